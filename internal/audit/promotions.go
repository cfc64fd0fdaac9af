package audit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// #region log-promotion
// LogPromotion writes a promotion decision to the promotion_log table.
func (s *Store) LogPromotion(ctx context.Context, entry PromotionEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}

	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO promotion_log (material_id, from_status, to_status, decision, reason, metrics_json, signature, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		entry.MaterialID,
		entry.FromStatus,
		entry.ToStatus,
		entry.Decision,
		nullIfEmpty(entry.Reason),
		nullIfEmpty(entry.MetricsJSON),
		nullIfEmpty(entry.Signature),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log promotion: %w", err)
	}
	s.log.Info("promotion logged",
		zap.String("material_id", entry.MaterialID),
		zap.String("decision", entry.Decision),
	)
	return nil
}

// #endregion log-promotion

// #region promotions
// Promotions returns the promotion history for materialID, oldest first.
// An empty id returns every entry.
func (s *Store) Promotions(ctx context.Context, materialID string) ([]PromotionEntry, error) {
	q := `SELECT material_id, from_status, to_status, decision, reason, metrics_json, signature, created_at
	 FROM promotion_log`
	args := []any{}
	if materialID != "" {
		q += ` WHERE material_id = ?`
		args = append(args, materialID)
	}
	q += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	defer rows.Close()

	entries := []PromotionEntry{}
	for rows.Next() {
		var e PromotionEntry
		var reason, metrics, sig *string
		var createdStr string
		if err := rows.Scan(&e.MaterialID, &e.FromStatus, &e.ToStatus, &e.Decision, &reason, &metrics, &sig, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.Reason = deref(reason)
		e.MetricsJSON = deref(metrics)
		e.Signature = deref(sig)
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// #endregion promotions
