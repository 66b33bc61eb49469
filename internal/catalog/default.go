package catalog

// Default returns the built-in catalog for raider.io character profiles,
// with English and German labels (plus French for the scores). German and
// French variants read numbers with comma decimals and dot or space grouping.
func Default() *Catalog {
	bucket := func(key, n string) LabelDefinition {
		return LabelDefinition{
			Key: key,
			Variants: []string{
				n + "+ keystone", n + "+ keys", n + "+ runs",
				n + "+ schlüsselstein", n + "+ schlüssel", n + "+ läufe",
			},
			Strategy:           MaxPhrase,
			Fallbacks:          []Strategy{ExactSibling, NearestNumber},
			Phrases:            []string{"timed runs", "timed", "rechtzeitig", "in der zeit"},
			AncestorClimbLimit: 2,
			VariantFormats:     eu(n+"+ schlüsselstein", n+"+ schlüssel", n+"+ läufe"),
			Kind:               KindCount,
		}
	}
	score := func(key string, english []string, local ...string) LabelDefinition {
		return LabelDefinition{
			Key:            key,
			Variants:       append(english, local...),
			Strategy:       FirstDecimal,
			Fallbacks:      []Strategy{ExactSibling},
			VariantFormats: eu(local...),
			Kind:           KindScore,
		}
	}

	// Sibling rows share one wrapper on profile pages, so the nearest-number
	// climb stops at the row.
	cat, err := New([]LabelDefinition{
		{
			Key:                "totalRuns",
			Variants:           []string{"total runs", "total keystone runs", "gesamtläufe", "gesamtanzahl"},
			Strategy:           ExactSibling,
			Fallbacks:          []Strategy{NearestNumber},
			AncestorClimbLimit: 2,
			VariantFormats:     eu("gesamtläufe", "gesamtanzahl"),
			Kind:               KindCount,
		},
		bucket("runs10plus", "10"),
		bucket("runs5plus", "5"),
		bucket("runs2plus", "2"),
		score("overallScore", []string{"overall score", "overall"}, "gesamtwertung", "score global"),
		score("healerScore", []string{"healer score", "healer"}, "heiler-wertung", "heiler", "score de soigneur"),
		score("dpsScore", []string{"dps score", "dps"}, "dps-wertung", "score de dps"),
		score("tankScore", []string{"tank score", "tank"}, "tank-wertung", "score de tank"),
	}, DerivedField{Key: "totalRuns", Sum: []string{"runs10plus", "runs5plus", "runs2plus"}})
	if err != nil {
		panic(err)
	}
	return cat
}

func eu(variants ...string) map[string]NumberFormat {
	m := make(map[string]NumberFormat, len(variants))
	for _, v := range variants {
		m[v] = FormatEU
	}
	return m
}
