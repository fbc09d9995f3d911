package helpers

import "testing"

func TestCalculateOffsetLimit(t *testing.T) {
	tests := []struct {
		name       string
		page, size int
		wantOffset uint64
		wantLimit  int
	}{
		{name: "first page", page: 1, size: 10, wantOffset: 0, wantLimit: 10},
		{name: "second page", page: 2, size: 10, wantOffset: 10, wantLimit: 10},
		{name: "zero page clamps", page: 0, size: 25, wantOffset: 0, wantLimit: 25},
		{name: "oversized limit clamps", page: 3, size: 500, wantOffset: 20, wantLimit: 10},
		{name: "negative size clamps", page: 1, size: -1, wantOffset: 0, wantLimit: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, limit := CalculateOffsetLimit(tt.page, tt.size)
			if offset != tt.wantOffset || limit != tt.wantLimit {
				t.Errorf("got (%d, %d), want (%d, %d)", offset, limit, tt.wantOffset, tt.wantLimit)
			}
		})
	}
}

func TestNewPaginationInfo(t *testing.T) {
	tests := []struct {
		name        string
		total       int64
		page, size  int
		wantPages   int
		wantCurrent int
	}{
		{name: "exact division", total: 20, page: 1, size: 10, wantPages: 2, wantCurrent: 1},
		{name: "ceiling", total: 21, page: 2, size: 10, wantPages: 3, wantCurrent: 2},
		{name: "single partial page", total: 3, page: 1, size: 10, wantPages: 1, wantCurrent: 1},
		{name: "empty result", total: 0, page: 1, size: 10, wantPages: 1, wantCurrent: 1},
		{name: "page beyond range clamps", total: 10, page: 5, size: 10, wantPages: 1, wantCurrent: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := NewPaginationInfo(tt.total, tt.page, tt.size)
			if info.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", info.TotalPages, tt.wantPages)
			}
			if info.CurrentPage != tt.wantCurrent {
				t.Errorf("CurrentPage = %d, want %d", info.CurrentPage, tt.wantCurrent)
			}
			if info.TotalItems != tt.total {
				t.Errorf("TotalItems = %d, want %d", info.TotalItems, tt.total)
			}
		})
	}
}
