package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/freshxpress/dashboard/internal/dashboard"
	"github.com/freshxpress/dashboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderList(t *testing.T) {
	var farmers []models.FarmerSummary
	for i := 0; i < 12; i++ {
		farmers = append(farmers, models.FarmerSummary{
			ID:            fmt.Sprintf("farmer-%04d-abcdef", i),
			FullName:      fmt.Sprintf("Farmer %d", i),
			ContactNumber: models.Text("9876543210"),
			State:         "Karnataka",
			IsVerify:      i%2 == 0,
		})
	}
	var buf bytes.Buffer
	require.NoError(t, renderList(&buf, dashboard.Paginate(farmers, 2)))
	out := buf.String()
	assert.Contains(t, out, "Page 2 of 2")
	assert.Contains(t, out, "farmer-0...")
	assert.Contains(t, out, "Farmer 11")
	assert.NotContains(t, out, "Farmer 9 ")
}

func TestRenderList_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderList(&buf, dashboard.Paginate(nil, 1)))
	assert.Contains(t, buf.String(), "No farmers found.")
	assert.Contains(t, buf.String(), "Page 1 of 1")
}

func TestRenderDetail(t *testing.T) {
	lat, lng := 13.0707, 77.7982
	f := &models.Farmer{
		ID:                 "f-1",
		FullName:           "Ravi Kumar",
		State:              "Karnataka",
		CropsGrown:         []string{"Paddy", "Sugarcane"},
		Latitude:           &lat,
		Longitude:          &lng,
		LandOwnershipProof: "https://example.com/doc.pdf",
	}
	var buf bytes.Buffer
	require.NoError(t, renderDetail(&buf, f))
	out := buf.String()
	assert.Contains(t, out, "Ravi Kumar")
	assert.Contains(t, out, "Not Verified ✗")
	assert.Contains(t, out, "Paddy, Sugarcane")
	assert.Contains(t, out, "13.0707, 77.7982")
	assert.Contains(t, out, "https://example.com/doc.pdf")

	buf.Reset()
	require.NoError(t, renderDetail(&buf, &models.Farmer{ID: "f-2", FullName: "Suresh Patil", IsVerify: true}))
	out = buf.String()
	assert.Contains(t, out, "Verified ✓")
	assert.NotContains(t, out, "Coordinates")
	assert.NotContains(t, out, "Land Ownership Proof")
	assert.True(t, strings.Contains(out, "Crops Grown:") && strings.Contains(out, dashboard.Placeholder))
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	assert.True(t, confirm(strings.NewReader("y\n"), &out, "Are you sure?"))
	assert.Contains(t, out.String(), "Are you sure? [y/N]: ")
	assert.True(t, confirm(strings.NewReader("YES\n"), &out, "?"))
	assert.False(t, confirm(strings.NewReader("\n"), &out, "?"))
	assert.False(t, confirm(strings.NewReader(""), &out, "?"))
}
