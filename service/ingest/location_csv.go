package ingest

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"problemsolving.GO/core/dates"
	"problemsolving.GO/service/inventory"
)

var monitorColumns = []string{"dataora", "pallet", "mag", "scaf", "col", "pia", "sc", "comp"}

// ParseLocationCSV reads a monitor export (DataOra;Pallet;Mag;Scaf;Col;Pia;Sc;Comp). The separator is
// ";" or ",", whichever the header uses more. Rows without a pallet are reported as warnings.
func ParseLocationCSV(r io.Reader) ([]inventory.LocationInput, []string, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, nil, err
	}
	firstLine := string(head)
	if i := strings.IndexByte(firstLine, '\n'); i >= 0 {
		firstLine = firstLine[:i]
	}
	sep := ';'
	if strings.Count(firstLine, ",") > strings.Count(firstLine, ";") {
		sep = ','
	}

	cr := csv.NewReader(br)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if _, ok := idx["pallet"]; !ok {
		return nil, nil, fmt.Errorf("header has no Pallet column (want %s)", strings.Join(monitorColumns, string(sep)))
	}

	var (
		rows     []inventory.LocationInput
		warnings []string
		line     = 1
	)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		pallet := get("pallet")
		if pallet == "" {
			warnings = append(warnings, fmt.Sprintf("line %d: empty Pallet", line))
			continue
		}
		rows = append(rows, inventory.LocationInput{
			UnitLoadID:   pallet,
			Warehouse:    get("mag"),
			Aisle:        get("scaf"),
			Column:       get("col"),
			Level:        get("pia"),
			Slot:         get("sc"),
			Compartment:  get("comp"),
			LastMovement: dates.Parse(get("dataora")),
		})
	}
	return rows, warnings, nil
}
