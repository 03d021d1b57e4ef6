package lookup

// Merge performs the left join of the deduplicated main sheet against the
// concatenated PN+DR records.
//
// Multiplicity: every main-sheet barcode produces one row per matching lookup
// record, or exactly one N/A row when nothing matches. Main-sheet duplicates
// keep the first occurrence only. Output order follows the main sheet, with
// matches in PN-then-DR sheet order.
func Merge(main []MainRow, records []Record) []MergedRow {
	order := make([]string, 0, len(main))
	firsts := make(map[string]MainRow, len(main))
	for _, row := range main {
		if _, seen := firsts[row.Barcode]; seen {
			continue
		}
		firsts[row.Barcode] = row
		order = append(order, row.Barcode)
	}

	byBarcode := make(map[string][]Record, len(records))
	for _, rec := range records {
		byBarcode[rec.Barcode] = append(byBarcode[rec.Barcode], rec)
	}

	merged := make([]MergedRow, 0, len(order))
	for _, barcode := range order {
		base := firsts[barcode]
		matches := byBarcode[barcode]
		if len(matches) == 0 {
			merged = append(merged, MergedRow{
				Barcode:   base.Barcode,
				Latitude:  base.Latitude,
				Longitude: base.Longitude,
				Request:   base.Request,
				Type:      TypeNA,
			})
			continue
		}
		for _, rec := range matches {
			merged = append(merged, MergedRow{
				Barcode:     base.Barcode,
				Latitude:    base.Latitude,
				Longitude:   base.Longitude,
				Request:     base.Request,
				Type:        rec.Type,
				ID:          rec.ID,
				Info:        rec.Info,
				Location:    rec.Location,
				Requirement: rec.Requirement,
			})
		}
	}
	return merged
}

// Build loads all configured sources and merges them. The PN and DR paths may
// be empty; the merge then degrades to N/A rows for every barcode. Any load
// failure is terminal for the whole build so the caller never sees a partial
// result.
func Build(src Sources) ([]MergedRow, error) {
	main, err := LoadMainSheet(src.Main)
	if err != nil {
		return nil, err
	}

	var records []Record
	if src.PN != "" {
		pn, err := LoadPNSheet(src.PN)
		if err != nil {
			return nil, err
		}
		records = append(records, pn...)
	}
	if src.DR != "" {
		dr, err := LoadDRSheet(src.DR)
		if err != nil {
			return nil, err
		}
		records = append(records, dr...)
	}

	return Merge(main, records), nil
}

// RecordsFor extracts the lookup records of one barcode from a merged result.
// N/A placeholder rows yield a single N/A record so callers can distinguish
// "no match" from "not in the main sheet".
func RecordsFor(merged []MergedRow, barcode string) []Record {
	var result []Record
	for _, row := range merged {
		if row.Barcode != barcode {
			continue
		}
		result = append(result, Record{
			Barcode:     row.Barcode,
			Type:        row.Type,
			ID:          row.ID,
			Info:        row.Info,
			Location:    row.Location,
			Requirement: row.Requirement,
		})
	}
	return result
}
