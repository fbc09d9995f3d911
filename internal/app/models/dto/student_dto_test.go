package dto

import (
	"reflect"
	"testing"

	"github.com/mertcakir/coursereg/internal/app/models"
)

func TestNormalizeCourses(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"repeated fields", []string{"Go Fundamentals", "PostgreSQL"}, []string{"Go Fundamentals", "PostgreSQL"}},
		{"comma separated", []string{"Go Fundamentals, PostgreSQL ,Docker"}, []string{"Go Fundamentals", "PostgreSQL", "Docker"}},
		{"blank entries dropped", []string{" ", "Go Fundamentals", ""}, []string{"Go Fundamentals"}},
		{"single value no comma", []string{"Go Fundamentals"}, []string{"Go Fundamentals"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeCourses(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeCourses(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFromStudentDefaultsCourses(t *testing.T) {
	resp := FromStudent(&models.Student{ID: 1, FirstName: "Ayse", LastName: "Yilmaz"})
	if resp.Courses == nil {
		t.Error("courses should serialize as an empty array, not null")
	}
}

func TestUpdateStudentRequestEmpty(t *testing.T) {
	if empty := (&UpdateStudentRequest{}).Empty(); !empty {
		t.Error("zero request should be empty")
	}
	name := "Mert"
	if empty := (&UpdateStudentRequest{FirstName: &name}).Empty(); empty {
		t.Error("request with a field should not be empty")
	}
	if empty := (&UpdateStudentRequest{Courses: []string{}}).Empty(); empty {
		t.Error("explicit empty course list clears the selection and is not an empty patch")
	}
}
