// Package pricelist loads quiz price lists from files.
package pricelist

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/verte-zerg/suuji/internal/numeral"
)

// ErrEmpty is returned for files without any values.
var ErrEmpty = errors.New("price list is empty")

// LoadValues reads one price per line from path. Blank lines and lines starting with
// '#' are skipped; digit grouping and full-width digits are accepted.
func LoadValues(path string) ([]int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only price list.
			_ = cerr
		}
	}()

	var values []int
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		v, err := numeral.ParseDigits(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		values = append(values, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, ErrEmpty
	}
	return values, nil
}
