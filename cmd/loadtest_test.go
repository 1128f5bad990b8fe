package cmd

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newCourseServer(t *testing.T, status int, body string) *LoadTester {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/courses/course-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	lt := NewLoadTester(LoadTestConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
	lt.courseID = "course-1"
	return lt
}

func TestFinalOccupancy(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   int
	}{
		{
			name:   "reads the counter",
			status: http.StatusOK,
			body:   `{"success":true,"data":{"id":"course-1","current_participants":7}}`,
			want:   7,
		},
		{
			name:   "request fails",
			status: http.StatusNotFound,
			body:   `{"success":false,"message":"course not found","code":"not_found"}`,
			want:   -1,
		},
		{
			name:   "data is not an object",
			status: http.StatusOK,
			body:   `{"success":true,"data":"course-1"}`,
			want:   -1,
		},
		{
			name:   "counter missing from changed envelope",
			status: http.StatusOK,
			body:   `{"success":true,"course":{"current_participants":7}}`,
			want:   -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lt := newCourseServer(t, tt.status, tt.body)
			assert.Equal(t, tt.want, lt.finalOccupancy())
		})
	}
}
