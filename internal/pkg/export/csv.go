// Package export renders student records into downloadable report formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mertcakir/coursereg/internal/app/models"
)

var csvHeader = []string{
	"ID", "First Name", "Last Name", "Email", "Phone", "Age",
	"Education", "Courses", "Active", "Registered At",
}

// StudentsCSV writes all given students as a CSV document.
func StudentsCSV(w io.Writer, students []models.Student) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range students {
		s := &students[i]
		if err := cw.Write(studentCSVRow(s)); err != nil {
			return fmt.Errorf("failed to write CSV row for student %d: %w", s.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func studentCSVRow(s *models.Student) []string {
	age := ""
	if s.Age != nil {
		age = strconv.Itoa(*s.Age)
	}
	education := ""
	if s.Education != nil {
		education = *s.Education
	}
	return []string{
		strconv.FormatInt(s.ID, 10),
		s.FirstName,
		s.LastName,
		s.Email,
		s.Phone,
		age,
		education,
		strings.Join(s.Courses, ", "),
		strconv.FormatBool(s.IsActive),
		s.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
