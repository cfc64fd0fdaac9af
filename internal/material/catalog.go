package material

import "github.com/ohkbilal/certa/internal/regime"

// #region catalog

var defaultRegistry = mustRegistry(catalog())

// DefaultRegistry returns the built-in material registry: sixteen verified
// materials and ten provisional ones awaiting promotion.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

func mustRegistry(entries []Material) *Registry {
	r, err := NewRegistry(entries)
	if err != nil {
		panic(err)
	}
	return r
}

// catalog lists entries in resolution order: encapsulated PTFE before PTFE,
// CPVC before PVC.
func catalog() []Material {
	return []Material{
		// verified metals
		{ID: "316SS", Name: "316 Stainless Steel", Type: Metal, Status: Verified, Fragments: []string{"316"}},
		{ID: "304SS", Name: "304 Stainless Steel", Type: Metal, Status: Verified, Fragments: []string{"304"}},
		{ID: "Hastelloy-C", Name: "Hastelloy C-276", Type: Metal, Status: Verified, Fragments: []string{"hastelloy"}},
		{ID: "Titanium", Name: "Titanium Grade 2", Type: Metal, Status: Verified, Exact: []string{"ti"}, Fragments: []string{"titanium"}},
		{ID: "Carbon-Steel", Name: "Carbon Steel", Type: Metal, Status: Verified, Exact: []string{"cs"}, Fragments: []string{"carbon"}},
		{ID: "Aluminum", Name: "Aluminum", Type: Metal, Status: Verified, Fragments: []string{"aluminum", "aluminium"}},

		// provisional metals
		{
			ID: "Monel-400", Name: "Monel 400", Type: Metal, Status: Provisional,
			Composition: "67% Ni, 30% Cu, 2% Fe, 1% Mn",
			Fragments:   []string{"monel"},
			Limits:      &TempLimits{MinC: -200, MaxC: 480},
			Behavior: map[regime.Regime]Status{
				regime.FluorideAcid:     Conditional,
				regime.ReducingAcid:     Compatible,
				regime.Halogenated:      Compatible,
				regime.StrongBase:       Compatible,
				regime.OxidizingAcid:    Fail,
				regime.AqueousCorrosive: Compatible,
				regime.OrganicSolvent:   Compatible,
			},
			FailureModes: []FailureMode{
				{"Sulfur attack", "High temp + sulfur compounds", "HIGH"},
				{"Oxidizer corrosion", "HNO3, oxidizing conditions", "HIGH"},
				{"Mercury embrittlement", "Mercury contact", "CRITICAL"},
			},
			References: []string{
				"Special Metals Corporation Technical Bulletin",
				"NACE Corrosion Data Survey",
				"Perry's Chemical Engineers' Handbook 9th Ed. Table 28-6",
			},
		},
		{
			ID: "Inconel-625", Name: "Inconel 625", Type: Metal, Status: Provisional,
			Composition: "58% Ni, 20-23% Cr, 8-10% Mo, 3-4% Nb",
			Fragments:   []string{"inconel"},
			Limits:      &TempLimits{MinC: -200, MaxC: 980},
			Behavior: map[regime.Regime]Status{
				regime.OxidizingAcid:    Conditional,
				regime.ReducingAcid:     Compatible,
				regime.Halogenated:      Compatible,
				regime.StrongBase:       Compatible,
				regime.AqueousCorrosive: Compatible,
			},
			FailureModes: []FailureMode{
				{"Sensitization", "650-850°C prolonged exposure", "MEDIUM"},
				{"Carburization", "Carbon-rich environments", "MEDIUM"},
				{"Sigma phase", "600-900°C prolonged", "HIGH"},
			},
			References: []string{
				"Special Metals INCONEL alloy 625 datasheet",
				"ASM Handbook Vol. 13B",
				"NACE MR0175/ISO 15156",
			},
		},
		{
			ID: "Duplex-2205", Name: "Duplex 2205 (UNS S32205)", Type: Metal, Status: Provisional,
			Composition: "22% Cr, 5% Ni, 3% Mo, 0.15% N",
			Fragments:   []string{"duplex", "2205"},
			Limits:      &TempLimits{MinC: -50, MaxC: 300},
			Behavior: map[regime.Regime]Status{
				regime.Halogenated:      Compatible,
				regime.AqueousCorrosive: Compatible,
				regime.OrganicSolvent:   Compatible,
				regime.ReducingAcid:     Conditional,
				regime.OxidizingAcid:    Conditional,
				regime.StrongBase:       Conditional,
			},
			RegimeMaxC: map[regime.Regime]float64{regime.StrongBase: 80},
			FailureModes: []FailureMode{
				{"Low-temp embrittlement", "Below -50°C", "HIGH"},
				{"Sigma phase", "600-950°C", "CRITICAL"},
				{"475°C embrittlement", "300-550°C prolonged", "HIGH"},
			},
			References: []string{
				"IMOA Practical Guidelines for Fabrication of Duplex SS",
				"Outokumpu Corrosion Handbook",
				"NACE Publication 1F192",
			},
		},
		{
			ID: "Cast-Iron", Name: "Ductile Cast Iron", Type: Metal, Status: Provisional,
			Composition: "3-4% C (nodular graphite), 2-3% Si, balance Fe",
			Fragments:   []string{"cast-iron", "castiron", "ductile-iron"},
			Limits:      &TempLimits{MinC: -30, MaxC: 350},
			Behavior: map[regime.Regime]Status{
				regime.AqueousNonHazardous: Compatible,
				regime.Neutral:             Compatible,
				regime.StrongBase:          Conditional,
				regime.ReducingAcid:        Fail,
				regime.OxidizingAcid:       Fail,
				regime.Halogenated:         Fail,
				regime.FluorideAcid:        Fail,
			},
			FailureModes: []FailureMode{
				{"Graphitic corrosion", "Long-term water service", "MEDIUM"},
				{"Acid attack", "All acids", "CRITICAL"},
				{"Chloride pitting", "Chloride exposure", "HIGH"},
				{"Galvanic corrosion", "Copper alloy contact", "MEDIUM"},
			},
			References: []string{
				"Ductile Iron Society Guidelines",
				"AWWA C151 (Ductile Iron Pipe)",
				"ASM Handbook Vol. 1",
			},
		},

		// verified plastics; encapsulated PTFE must resolve before plain PTFE
		{
			ID: "PTFE-Encap", Name: "PTFE-Encapsulated O-Ring", Type: Elastomer, Status: Provisional,
			Composition: "PTFE jacket over FKM or Silicone core",
			Fragments:   []string{"ptfe-encap", "encapsulated"},
			Limits:      &TempLimits{MinC: -60, MaxC: 200},
			Behavior: map[regime.Regime]Status{
				regime.OxidizingAcid:  Compatible,
				regime.ReducingAcid:   Compatible,
				regime.FluorideAcid:   Compatible,
				regime.StrongBase:     Compatible,
				regime.OrganicSolvent: Compatible,
				regime.Halogenated:    Compatible,
			},
			FailureModes: []FailureMode{
				{"Core degradation", "Jacket breach + aggressive chemical", "CRITICAL"},
				{"Limited compression", "Stiffer than solid elastomer", "LOW"},
				{"High-pressure dynamic failure", "Not for high-pressure dynamic service", "MEDIUM"},
			},
			References: []string{
				"Marco Rubber & Plastics Technical Guide",
				"Parker Compound Selection Guide",
				"ASTM D1418 (Rubber Classification)",
			},
		},
		{ID: "PTFE", Name: "PTFE (Teflon)", Type: Plastic, Status: Verified, Exact: []string{"ptfe", "teflon", "ptfe-lined"}},
		{ID: "PVDF", Name: "PVDF (Kynar)", Type: Plastic, Status: Verified, Exact: []string{"pvdf", "kynar"}},
		{ID: "PP", Name: "Polypropylene", Type: Plastic, Status: Verified, Exact: []string{"pp", "polypropylene"}},
		{ID: "CPVC", Name: "CPVC", Type: Plastic, Status: Verified, Exact: []string{"cpvc"}},
		{ID: "PVC", Name: "PVC", Type: Plastic, Status: Verified, Exact: []string{"pvc"}},
		{ID: "HDPE", Name: "HDPE", Type: Plastic, Status: Verified, Exact: []string{"hdpe"}},

		// provisional plastics and composites
		{
			ID: "PEEK", Name: "PEEK (Polyetheretherketone)", Type: Plastic, Status: Provisional,
			Composition: "Aromatic polyketone thermoplastic",
			Exact:       []string{"peek"},
			Limits:      &TempLimits{MinC: -60, MaxC: 250},
			Behavior: map[regime.Regime]Status{
				regime.OxidizingAcid:  Conditional,
				regime.ReducingAcid:   Compatible,
				regime.OrganicSolvent: Compatible,
				regime.StrongBase:     Fail,
				regime.Halogenated:    Compatible,
			},
			FailureModes: []FailureMode{
				{"Concentrated acid attack", "Conc. H2SO4, conc. HNO3", "HIGH"},
				{"Caustic degradation", "Strong alkalis", "HIGH"},
				{"UV degradation", "Outdoor exposure", "MEDIUM"},
			},
			References: []string{
				"Victrex PEEK Polymer Properties Guide",
				"Röchling Engineering Plastics Guide",
				"Perry's Chemical Engineers' Handbook 9th Ed.",
			},
		},
		{
			ID: "UHMWPE", Name: "UHMWPE (Ultra-High MW Polyethylene)", Type: Plastic, Status: Provisional,
			Composition: "Polyethylene with MW 3.5-7.5 million",
			Exact:       []string{"uhmwpe", "uhmw"},
			Limits:      &TempLimits{MinC: -200, MaxC: 80},
			Behavior: map[regime.Regime]Status{
				regime.AqueousCorrosive: Compatible,
				regime.ReducingAcid:     Compatible,
				regime.StrongBase:       Compatible,
				regime.OrganicSolvent:   Conditional,
				regime.OxidizingAcid:    Conditional,
			},
			FailureModes: []FailureMode{
				{"Thermal softening", ">80°C", "HIGH"},
				{"Hydrocarbon swelling", "Aromatics, chlorinated solvents", "MEDIUM"},
				{"Oxidizer attack", "Strong oxidizers", "MEDIUM"},
				{"UV degradation", "Outdoor exposure", "MEDIUM"},
				{"Creep", "Sustained load", "MEDIUM"},
			},
			References: []string{
				"Celanese GUR UHMWPE Technical Data",
				"Quadrant Engineering Plastics Guide",
				"Plastics Design Library Chemical Resistance",
			},
		},
		{
			ID: "FRP", Name: "FRP/GRP (Vinyl Ester)", Type: Composite, Status: Provisional,
			Composition: "Glass fiber + Vinyl Ester resin",
			Exact:       []string{"frp", "grp", "fiberglass"},
			Limits:      &TempLimits{MinC: -40, MaxC: 120},
			Behavior: map[regime.Regime]Status{
				regime.OxidizingAcid:  Compatible,
				regime.ReducingAcid:   Compatible,
				regime.Halogenated:    Compatible,
				regime.StrongBase:     Conditional,
				regime.OrganicSolvent: Conditional,
				regime.FluorideAcid:   Fail,
			},
			FailureModes: []FailureMode{
				{"Resin degradation", "Certain solvents", "HIGH"},
				{"Glass fiber exposure", "Wicking from damage", "MEDIUM"},
				{"UV degradation", "Without gel coat", "MEDIUM"},
				{"HF attack", "Hydrofluoric acid", "CRITICAL"},
			},
			References: []string{
				"ASME RTP-1 (Reinforced Thermoset Plastic)",
				"Ashland Derakane Epoxy Vinyl Ester Guide",
				"FRP Institute Design Manual",
			},
		},

		// verified elastomers
		{ID: "FKM", Name: "Viton (FKM)", Type: Elastomer, Status: Verified, Exact: []string{"fkm", "viton"}},
		{ID: "EPDM", Name: "EPDM", Type: Elastomer, Status: Verified, Exact: []string{"epdm"}},
		{ID: "NBR", Name: "Nitrile (Buna-N)", Type: Elastomer, Status: Verified, Exact: []string{"nbr", "nitrile", "buna-n"}},
		{ID: "Kalrez", Name: "Kalrez (FFKM)", Type: Elastomer, Status: Verified, Exact: []string{"kalrez", "ffkm"}},

		// provisional elastomers
		{
			ID: "Neoprene", Name: "Neoprene (CR)", Type: Elastomer, Status: Provisional,
			Composition: "Polychloroprene rubber",
			Exact:       []string{"neoprene", "cr", "chloroprene"},
			Limits:      &TempLimits{MinC: -35, MaxC: 100},
			Behavior: map[regime.Regime]Status{
				regime.OrganicSolvent:   Conditional,
				regime.AqueousCorrosive: Compatible,
				regime.ReducingAcid:     Conditional,
				regime.OxidizingAcid:    Fail,
				regime.StrongBase:       Conditional,
			},
			FailureModes: []FailureMode{
				{"Oxidizer attack", "Strong oxidizers", "HIGH"},
				{"Aromatic solvent attack", "Toluene, xylene", "HIGH"},
				{"Low-temp hardening", "Below -35°C", "MEDIUM"},
				{"Ketone/ester swelling", "MEK, acetone", "MEDIUM"},
			},
			References: []string{
				"DuPont Neoprene Technical Guide",
				"Parker O-Ring Handbook",
				"Rubber Manufacturers Association",
			},
		},
		{
			ID: "Silicone", Name: "Silicone (VMQ)", Type: Elastomer, Status: Provisional,
			Composition: "Vinyl Methyl Silicone rubber",
			Exact:       []string{"silicone", "vmq"},
			Limits:      &TempLimits{MinC: -60, MaxC: 230},
			Behavior: map[regime.Regime]Status{
				regime.AqueousNonHazardous: Compatible,
				regime.OrganicSolvent:      Fail,
				regime.ReducingAcid:        Fail,
			},
			FailureModes: []FailureMode{
				{"Oil/fuel swelling", "Petroleum products", "HIGH"},
				{"Acid attack", "Concentrated acids", "HIGH"},
				{"Low tear strength", "Dynamic applications", "MEDIUM"},
			},
			References: []string{
				"Dow Corning Silicone Elastomers Guide",
				"Wacker Elastosil Technical Data",
				"ISO 1629 (Rubber Nomenclature)",
			},
		},
	}
}

// #endregion catalog
