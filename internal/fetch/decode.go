package fetch

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/VoxDroid/nycschools/internal/format"
	"github.com/VoxDroid/nycschools/internal/store"
)

// schoolRecord is one row of the school directory dataset. The open data API
// returns every value as a string.
type schoolRecord struct {
	DBN            string `json:"dbn"`
	Name           string `json:"school_name"`
	Boro           string `json:"boro"`
	Borough        string `json:"borough"`
	Neighborhood   string `json:"neighborhood"`
	Address        string `json:"primary_address_line_1"`
	City           string `json:"city"`
	Zip            string `json:"zip"`
	Phone          string `json:"phone_number"`
	Email          string `json:"school_email"`
	Website        string `json:"website"`
	Overview       string `json:"overview_paragraph"`
	TotalStudents  string `json:"total_students"`
	GraduationRate string `json:"graduation_rate"`
	AttendanceRate string `json:"attendance_rate"`
}

// satRecord is one row of the SAT results dataset. Suppressed values are "s".
type satRecord struct {
	DBN        string `json:"dbn"`
	TestTakers string `json:"num_of_sat_test_takers"`
	Reading    string `json:"sat_critical_reading_avg_score"`
	Math       string `json:"sat_math_avg_score"`
	Writing    string `json:"sat_writing_avg_score"`
}

var boroCodes = map[string]string{
	"M": "Manhattan",
	"X": "Bronx",
	"K": "Brooklyn",
	"Q": "Queens",
	"R": "Staten Island",
}

// Borough maps the dataset's borough code or name to a display name. Codes
// win; "STATEN IS" and other spellings are title-cased.
func Borough(code, name string) string {
	if b, ok := boroCodes[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return b
	}
	n := strings.Join(strings.Fields(name), " ")
	if strings.EqualFold(n, "STATEN IS") {
		return "Staten Island"
	}
	return cases.Title(language.English).String(strings.ToLower(n))
}

// clean strips terminal escapes and control characters from a remote value.
func clean(s string) string {
	out, _ := format.SanitizeText(ansi.Strip(s))
	return out
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// DecodeSchools parses the school directory JSON array. Rows without a DBN or
// a name are skipped; the number skipped is returned.
func DecodeSchools(r io.Reader) ([]store.School, int, error) {
	var recs []schoolRecord
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, 0, fmt.Errorf("decode schools: %w", err)
	}
	out := make([]store.School, 0, len(recs))
	skipped := 0
	for _, rec := range recs {
		s := store.School{
			DBN:            strings.ToUpper(clean(rec.DBN)),
			Name:           clean(rec.Name),
			Borough:        Borough(rec.Boro, clean(rec.Borough)),
			Neighborhood:   clean(rec.Neighborhood),
			Address:        clean(rec.Address),
			City:           clean(rec.City),
			Zip:            clean(rec.Zip),
			Phone:          clean(rec.Phone),
			Email:          clean(rec.Email),
			Website:        clean(rec.Website),
			Overview:       clean(rec.Overview),
			TotalStudents:  atoi(rec.TotalStudents),
			GraduationRate: clean(rec.GraduationRate),
			AttendanceRate: clean(rec.AttendanceRate),
		}
		if s.DBN == "" || s.Name == "" {
			skipped++
			continue
		}
		out = append(out, s)
	}
	return out, skipped, nil
}

// DecodeSAT parses the SAT results JSON array. Rows without a DBN are skipped.
func DecodeSAT(r io.Reader) ([]store.SATScore, error) {
	var recs []satRecord
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, fmt.Errorf("decode sat: %w", err)
	}
	out := make([]store.SATScore, 0, len(recs))
	for _, rec := range recs {
		dbn := strings.ToUpper(clean(rec.DBN))
		if dbn == "" {
			continue
		}
		out = append(out, store.SATScore{
			DBN:        dbn,
			TestTakers: atoi(rec.TestTakers),
			ReadingAvg: atoi(rec.Reading),
			MathAvg:    atoi(rec.Math),
			WritingAvg: atoi(rec.Writing),
		})
	}
	return out, nil
}
