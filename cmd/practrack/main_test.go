package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--db", dbPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_ImportSummaryExport(t *testing.T) {
	// GIVEN: A roster file and an empty database
	dir := t.TempDir()
	db := filepath.Join(dir, "hours.db")
	rosterPath := filepath.Join(dir, "class.csv")
	require.NoError(t, os.WriteFile(rosterPath, []byte("student_name,student_id\nAnn,A1\nBob,\nAnn Again,A1\n"), 0o644))

	// WHEN: Importing
	out, err := run(t, db, "import", rosterPath)

	// THEN: One added, two skipped
	require.NoError(t, err)
	assert.Contains(t, out, "Added 1 students, skipped 2")

	// AND: The summary lists Ann with all four default sites
	out, err = run(t, db, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Site A - Hospital A - Owed")
	assert.Contains(t, out, "120.00")

	// AND: The students export holds one data row
	xlsx := filepath.Join(dir, "students.xlsx")
	_, err = run(t, db, "export", "students", "-o", xlsx)
	require.NoError(t, err)

	f, err := excelize.OpenFile(xlsx)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Students")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestCLI_Sites(t *testing.T) {
	db := filepath.Join(t.TempDir(), "hours.db")

	out, err := run(t, db, "sites", "set", "Rural Outreach", "12.5")
	require.NoError(t, err)
	assert.Contains(t, out, "Added new site 'Rural Outreach' with 12.5 hours.")

	out, err = run(t, db, "sites", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Rural Outreach")
	assert.Contains(t, out, "Site D - Community D")

	_, err = run(t, db, "sites", "delete", "Rural Outreach")
	require.NoError(t, err)
	_, err = run(t, db, "sites", "delete", "Rural Outreach")
	assert.Error(t, err)

	_, err = run(t, db, "sites", "set", "Bad", "lots")
	assert.Error(t, err)
}

func TestCLI_ResetNeedsConfirmation(t *testing.T) {
	db := filepath.Join(t.TempDir(), "hours.db")

	_, err := run(t, db, "reset")
	assert.Error(t, err)

	out, err := run(t, db, "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "SYSTEM DATA RESET COMPLETE")
}

func TestCLI_ExportUnknownTable(t *testing.T) {
	db := filepath.Join(t.TempDir(), "hours.db")

	_, err := run(t, db, "export", "grades", "-o", filepath.Join(t.TempDir(), "x.xlsx"))

	assert.Error(t, err)
}
