// Package loader reads per-speaker ASR error data from disk.
package loader

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/maastricht-university/asr-bias/errs"
	"github.com/maastricht-university/asr-bias/rates"
)

// Column headers of the error-count tables.
const (
	ColSpeaker = "SPKR"
	ColSub     = "Sub"
	ColIns     = "Ins"
	ColDel     = "Del"
	ColCorr    = "Corr"
	ColWords   = "# Wrd"
)

func open(op, path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Missing(op, path, err)
		}
		return nil, &errs.Error{Kind: errs.IO, Op: op, Msg: path, Err: err}
	}
	return f, nil
}

// LoadCounts reads one speaker per row from a CSV table with a header line.
// Columns other than the count columns and SPKR are ignored.
func LoadCounts(path string) ([]rates.Counts, error) {
	const op = "loader.counts"
	f, err := open(op, path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCounts(f, path)
}

// ReadCounts parses an error-count table; name is used in error messages.
func ReadCounts(r io.Reader, name string) ([]rates.Counts, error) {
	const op = "loader.counts"
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errs.InvalidParam(op, "%s: empty table", name)
		}
		return nil, &errs.Error{Kind: errs.InvalidParameter, Op: op, Msg: name, Err: err}
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, col := range []string{ColSub, ColIns, ColDel, ColCorr, ColWords} {
		if _, ok := idx[col]; !ok {
			return nil, errs.InvalidParam(op, "%s: missing column %q", name, col)
		}
	}

	var out []rates.Counts
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &errs.Error{Kind: errs.InvalidParameter, Op: op, Msg: name, Err: err}
		}
		field := func(col string) (int, error) {
			i := idx[col]
			if i >= len(rec) {
				return 0, errors.New("value missing")
			}
			return parseCount(rec[i])
		}
		var c rates.Counts
		if i, ok := idx[ColSpeaker]; ok && i < len(rec) {
			c.Speaker = strings.TrimSpace(rec[i])
		}
		for _, dst := range []struct {
			col string
			v   *int
		}{
			{ColSub, &c.Substitutions},
			{ColIns, &c.Insertions},
			{ColDel, &c.Deletions},
			{ColCorr, &c.Correct},
			{ColWords, &c.TotalWords},
		} {
			v, err := field(dst.col)
			if err != nil {
				return nil, errs.InvalidParam(op, "%s:%d: %s: %v", name, line, dst.col, err)
			}
			*dst.v = v
		}
		if c.TotalWords == 0 {
			return nil, errs.InvalidParam(op, "%s:%d: %s must be > 0", name, line, ColWords)
		}
		out = append(out, c)
	}
	return out, nil
}

func parseCount(s string) (int, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if f < 0 || f != math.Trunc(f) {
		return 0, errors.New("not a non-negative integer: " + s)
	}
	return int(f), nil
}

// LoadRates reads one floating point rate per non-blank line.
func LoadRates(path string) ([]float64, error) {
	const op = "loader.rates"
	f, err := open(op, path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []float64
	sc := bufio.NewScanner(f)
	for line := 1; sc.Scan(); line++ {
		s := strings.TrimSpace(sc.Text())
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errs.InvalidParam(op, "%s:%d: %v", path, line, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return nil, errs.InvalidParam(op, "%s:%d: rate must be finite and non-negative, got %s", path, line, s)
		}
		out = append(out, v)
	}
	if err := sc.Err(); err != nil {
		return nil, &errs.Error{Kind: errs.InvalidParameter, Op: op, Msg: path, Err: err}
	}
	return out, nil
}
