package service

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"go-gin-bookstore/internal/domain"
)

// RowResult 逐行结果：批量导入的部分失败必须显式可见
type RowResult struct {
	Line   int    `json:"line"`
	BookID uint   `json:"bookId,omitempty"`
	Error  string `json:"error,omitempty"`
}

type ImportReport struct {
	Inserted int         `json:"inserted"`
	Failed   int         `json:"failed"`
	Rows     []RowResult `json:"rows"`
}

// ImportCSV 期望带表头的 CSV：title,author,description,isbn,price。
// 每行独立成败，坏行不中断整批。
func (s *BookService) ImportCSV(ctx context.Context, owner *domain.User, r io.Reader) (*ImportReport, error) {
	if owner == nil || owner.ID == 0 {
		return nil, ErrUnauthenticated
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, invalid("file", "missing or unreadable CSV header")
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := col["title"]; !ok {
		return nil, invalid("file", "CSV header must contain a title column")
	}
	if _, ok := col["author"]; !ok {
		return nil, invalid("file", "CSV header must contain an author column")
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	report := &ImportReport{Rows: []RowResult{}}
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			report.Failed++
			report.Rows = append(report.Rows, RowResult{Line: line, Error: "malformed row"})
			continue
		}

		in := BookInput{Title: field(rec, "title"), Author: field(rec, "author")}
		if v := field(rec, "description"); v != "" {
			in.Description = &v
		}
		if v := field(rec, "isbn"); v != "" {
			in.ISBN = &v
		}
		if v := field(rec, "price"); v != "" {
			p, err := strconv.ParseFloat(v, 64)
			if err != nil {
				report.Failed++
				report.Rows = append(report.Rows, RowResult{Line: line, Error: "price: not a number"})
				continue
			}
			in.Price = &p
		}

		b, err := s.Create(ctx, owner, in)
		if err != nil {
			report.Failed++
			report.Rows = append(report.Rows, RowResult{Line: line, Error: err.Error()})
			continue
		}
		report.Inserted++
		report.Rows = append(report.Rows, RowResult{Line: line, BookID: b.ID})
	}
	return report, nil
}
