package server

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/honganh1206/openclawd/server/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockServer(t *testing.T) (*httptest.Server, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ts := httptest.NewServer(New(Config{ProcessDelay: noDelay}, data.NewModels(db, 0), slog.New(slog.DiscardHandler)))
	t.Cleanup(ts.Close)

	return ts, mock
}

func TestStoreFailures(t *testing.T) {
	errDisk := errors.New("disk I/O error")

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		expect  func(mock sqlmock.Sqlmock)
		code    int
		message string
	}{
		{
			name:   "status counts",
			method: http.MethodGet,
			path:   "/status",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT\s+COUNT`).WillReturnError(errDisk)
			},
			code:    http.StatusInternalServerError,
			message: "Failed to count activities",
		},
		{
			name:   "list recent",
			method: http.MethodGet,
			path:   "/api/activities?limit=5",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`ORDER BY seq DESC LIMIT`).WillReturnError(errDisk)
			},
			code:    http.StatusInternalServerError,
			message: "Failed to list activities",
		},
		{
			name:   "create rolls back",
			method: http.MethodPost,
			path:   "/api/activities",
			body:   `{"type":"t","description":"d"}`,
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`INSERT INTO activities`).WillReturnError(errDisk)
				mock.ExpectRollback()
			},
			code:    http.StatusInternalServerError,
			message: "Failed to create activity",
		},
		{
			name:   "get unexpected error",
			method: http.MethodGet,
			path:   "/api/activities/abc",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM activities WHERE id = \?`).WithArgs("abc").WillReturnError(errDisk)
			},
			code:    http.StatusInternalServerError,
			message: "Internal server error",
		},
		{
			name:   "update missing row",
			method: http.MethodPatch,
			path:   "/api/activities/abc",
			body:   `{"status":"completed"}`,
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE activities`).WillReturnResult(sqlmock.NewResult(0, 0))
			},
			code:    http.StatusNotFound,
			message: "Activity not found",
		},
		{
			name:   "clear",
			method: http.MethodDelete,
			path:   "/api/activities",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM activities`).WillReturnError(errDisk)
			},
			code:    http.StatusInternalServerError,
			message: "Failed to clear activities",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, mock := newMockServer(t)
			tt.expect(mock)

			code, body := doJSON(t, tt.method, ts.URL+tt.path, tt.body)

			assert.Equal(t, tt.code, code)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.message, body["error"])
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
