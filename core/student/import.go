package student

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/studsight/studsight/core"
)

// ExpectedHeaders is the column layout of the bulk import template.
// Files matching it exactly import directly; anything else goes through
// the header mapping flow.
var ExpectedHeaders = []string{
	"Firstname", "Surname", "DOB", "Gender", "Yeargroup", "Mastery", "Email",
	"Parentname", "Parentnumber", "Address", "Nationality", "CountryofBirth", "EnrollmentDate",
	"Conditions", "Medication", "Allergies", "Needs",
}

var ErrEmptyImport = errors.New("no rows to import")

// HeadersMismatchError is returned when an uploaded file's headers do
// not match ExpectedHeaders; it carries them so a client can offer
// manual mapping.
type HeadersMismatchError struct {
	Headers []string
}

func (e *HeadersMismatchError) Error() string {
	return "csv headers do not match the import template"
}

// HeaderMapping maps a file's own headers to template headers for the
// manual mapping flow. Unmapped columns are ignored.
type HeaderMapping map[string]string

type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportCSV bulk-registers students from a CSV in the template layout.
// Rows with the wrong column count or unusable data are skipped, not
// fatal. Subjects are not part of the template; they are assigned later
// when the timetable is scheduled.
func (svc *Service) ImportCSV(r io.Reader) (ImportResult, error) {
	headers, rows, err := readCSV(r)
	if err != nil {
		return ImportResult{}, err
	}
	if !equalHeaders(headers, ExpectedHeaders) {
		return ImportResult{}, &HeadersMismatchError{Headers: headers}
	}

	var res ImportResult
	for _, row := range rows {
		if len(row) != len(ExpectedHeaders) {
			res.Skipped++
			continue
		}
		record := make(map[string]string, len(row))
		for i, h := range ExpectedHeaders {
			record[h] = row[i]
		}
		if err := svc.importRecord(record); err != nil {
			res.Skipped++
			continue
		}
		res.Imported++
	}
	return res, nil
}

// ImportMapped bulk-registers students from a CSV whose headers were
// manually mapped to the template's.
func (svc *Service) ImportMapped(r io.Reader, mapping HeaderMapping) (ImportResult, error) {
	headers, rows, err := readCSV(r)
	if err != nil {
		return ImportResult{}, err
	}

	var res ImportResult
	for _, row := range rows {
		if len(row) != len(headers) {
			res.Skipped++
			continue
		}
		record := make(map[string]string, len(mapping))
		for i, h := range headers {
			if field, ok := mapping[h]; ok {
				record[field] = row[i]
			}
		}
		if err := svc.importRecord(record); err != nil {
			res.Skipped++
			continue
		}
		res.Imported++
	}
	return res, nil
}

func readCSV(r io.Reader) (headers []string, rows [][]string, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // row lengths are checked per row

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, errors.Wrap(err, "reading csv")
	}
	if len(records) < 2 {
		return nil, nil, ErrEmptyImport
	}

	headers = records[0]
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}
	// Windows Excel exports prepend a BOM to the first header.
	headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	return headers, records[1:], nil
}

func equalHeaders(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func (svc *Service) importRecord(record map[string]string) error {
	dob, err := parseDate(strings.TrimSpace(record["DOB"]))
	if err != nil {
		return err
	}
	yearGroup, err := strconv.Atoi(strings.TrimSpace(record["Yeargroup"]))
	if err != nil {
		return err
	}
	gender := strings.TrimSpace(record["Gender"])
	if gender == "" {
		return errors.New("missing gender")
	}
	gender = strings.ToUpper(gender[:1])

	email := core.CleanString(record["Email"], true /* lower */)
	if err = svc.checkUniqueness(email); err != nil {
		return err
	}

	now := time.Now().UTC()
	st := Student{
		FirstName: core.TitleString(record["Firstname"]),
		Surname:   core.TitleString(record["Surname"]),
		DOB:       dob,
		Gender:    gender,
		YearGroup: yearGroup,
		Mastery:   strings.ToUpper(core.CleanString(record["Mastery"])),
		Email:     email,
		// subjects come later when the timetable is scheduled; an empty
		// slice keeps the column non-NULL
		Subjects: []string{},
		Contact:  Contact{
			GuardianName:   core.TitleString(record["Parentname"]),
			GuardianPhone:  core.CleanString(record["Parentnumber"]),
			Address:        core.CleanString(record["Address"]),
			Nationality:    core.TitleString(record["Nationality"]),
			CountryOfBirth: core.TitleString(record["CountryofBirth"]),
		},
		Medical: Medical{
			Conditions: core.TitleString(record["Conditions"]),
			Medication: core.TitleString(record["Medication"]),
			Allergies:  core.TitleString(record["Allergies"]),
			Needs:      core.TitleString(record["Needs"]),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if enrolled := strings.TrimSpace(record["EnrollmentDate"]); enrolled != "" {
		if st.Contact.EnrolledAt, err = parseDate(enrolled); err != nil {
			return err
		}
	}

	st, err = svc.repo.CreateStudent(st)
	if err != nil {
		return err
	}
	return svc.repo.SaveTimetable(st.ID, NewTimetable(st.Mastery))
}
