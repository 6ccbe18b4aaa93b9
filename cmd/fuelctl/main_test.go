package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/fleetlog/internal/fuelimport"
)

const sampleFile = "fuel_date,vehicle_plate,fuel_amount,unit_price,fuel_station\n" +
	"2025-06-10,A-1,10,150,S1\n" +
	"2025-06-11,A-2,0,150,S1\n"

// run executes the root command with args and returns stdout and the error.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("FLEETLOG_API_URL", "")
	t.Setenv("FLEETLOG_HTTP_TIMEOUT", "")

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fuel.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestTemplate_Stdout(t *testing.T) {
	out, err := run(t, "template")

	require.NoError(t, err)
	assert.Equal(t, string(fuelimport.Template()), out)
}

func TestTemplate_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tpl.csv")

	out, err := run(t, "template", "-o", path)

	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fuelimport.Template(), got)
}

func TestCheck_ReportsErrors(t *testing.T) {
	path := writeFile(t, sampleFile)

	out, err := run(t, "check", path)

	require.EqualError(t, err, "1 rows have errors")
	assert.Contains(t, out, "ROW")
	assert.Contains(t, out, fuelimport.MsgInvalidAmount)
	assert.Contains(t, out, "1 valid, 1 with errors")
}

func TestCheck_FixMakesFileValid(t *testing.T) {
	path := writeFile(t, sampleFile)

	out, err := run(t, "check", path, "--fix", "3:fuel_amount=12.5")

	require.NoError(t, err)
	assert.Contains(t, out, "2 valid, 0 with errors")
	assert.Contains(t, out, "1875", "cost is re-derived after the fix")
}

func TestCheck_BadFix(t *testing.T) {
	path := writeFile(t, sampleFile)
	tests := []struct {
		name string
		fix  string
		want string
	}{
		{"no equals", "3:fuel_amount", "want ROW:FIELD=VALUE"},
		{"no colon", "fuel_amount=1", "want ROW:FIELD=VALUE"},
		{"row not a number", "x:fuel_amount=1", "row must be a number"},
		{"unknown field", "3:colour=red", "unknown field"},
		{"no such row", "9:fuel_amount=1", "no data row 9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "check", path, "--fix", tt.fix)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCheck_WarningDoesNotFail(t *testing.T) {
	path := writeFile(t, "fuel_date,vehicle_plate,fuel_amount,unit_price,fuel_station,mileage\n"+
		"2025-06-10,A-1,10,150,S1,many\n")

	out, err := run(t, "check", path)

	require.NoError(t, err)
	assert.Contains(t, out, "warning: mileage")
	assert.Contains(t, out, "1 valid, 0 with errors")
}

func TestCheck_DroppedRowsListed(t *testing.T) {
	path := writeFile(t, sampleFile+"2025-06-12,A-3,10\n")

	out, err := run(t, "check", path)

	require.Error(t, err)
	assert.Contains(t, out, "1 skipped (wrong number of cells on rows 4)")
}

func TestCheck_AutoDelimiter(t *testing.T) {
	path := writeFile(t, strings.ReplaceAll(sampleFile, ",", ";"))

	out, err := run(t, "check", path, "--delimiter", "auto", "--fix", "3:fuel_amount=1")

	require.NoError(t, err)
	assert.Contains(t, out, "2 valid")
}

func TestCheck_UnknownDelimiter(t *testing.T) {
	path := writeFile(t, sampleFile)

	_, err := run(t, "check", path, "--delimiter", "space")

	assert.ErrorContains(t, err, "unknown delimiter")
}

func TestCheck_MissingHeader(t *testing.T) {
	path := writeFile(t, "fuel_date,vehicle_plate\n2025-06-10,A-1\n")

	_, err := run(t, "check", path)

	assert.ErrorIs(t, err, fuelimport.ErrInvalidFile)
}

func TestSubmit_SendsValidRows(t *testing.T) {
	var body struct {
		Records []map[string]any `json:"records"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/fuel/records/batch", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get(fuelimport.IdempotencyHeader))
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success_count":1,"error_count":0}`))
	}))
	defer srv.Close()
	path := writeFile(t, sampleFile)

	out, err := run(t, "submit", path, "--api", srv.URL+"/api")

	require.NoError(t, err)
	assert.Contains(t, out, "1 fuel records uploaded")
	require.Len(t, body.Records, 1)
	assert.Equal(t, "A-1", body.Records[0]["vehicle_plate"])
}

func TestSubmit_ReplayAndRejections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success_count":1,"error_count":1,"replayed":true}`))
	}))
	defer srv.Close()
	path := writeFile(t, sampleFile)

	out, err := run(t, "submit", path, "--api", srv.URL)

	require.NoError(t, err)
	assert.Contains(t, out, "1 records rejected by the server")
	assert.Contains(t, out, "already uploaded")
}

func TestSubmit_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":{"code":"validation_error","message":"bad batch"}}`))
	}))
	defer srv.Close()
	path := writeFile(t, sampleFile)

	_, err := run(t, "submit", path, "--api", srv.URL)

	var submitErr *fuelimport.SubmitError
	require.ErrorAs(t, err, &submitErr)
	assert.Equal(t, "bad batch", submitErr.Message)
}

func TestSubmit_NothingValid(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()
	path := writeFile(t, "fuel_date,vehicle_plate,fuel_amount,unit_price,fuel_station\n2025-06-10,A-1,0,150,S1\n")

	_, err := run(t, "submit", path, "--api", srv.URL)

	assert.ErrorIs(t, err, fuelimport.ErrNothingToUpload)
	assert.Zero(t, calls)
}
