package dashboard

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/freshxpress/dashboard/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func farmers(flags ...bool) []models.FarmerSummary {
	out := make([]models.FarmerSummary, len(flags))
	for i, f := range flags {
		out[i] = models.FarmerSummary{ID: fmt.Sprint(i + 1), IsVerify: f}
	}
	return out
}

func ids(list []models.FarmerSummary) []string {
	out := make([]string, len(list))
	for i, f := range list {
		out[i] = f.ID
	}
	return out
}

func TestSortByVerification_Scenario(t *testing.T) {
	list := farmers(false, true)
	got := SortByVerification(list, true)
	if diff := cmp.Diff([]string{"2", "1"}, ids(got)); diff != "" {
		t.Errorf("verified-first order (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"1", "2"}, ids(list), "input is not modified")
}

func TestSortByVerification_StableAndInvolution(t *testing.T) {
	list := farmers(true, false, true, false, false, true)

	verifiedFirst := SortByVerification(list, true)
	assert.Equal(t, []string{"1", "3", "6", "2", "4", "5"}, ids(verifiedFirst))

	unverifiedFirst := SortByVerification(verifiedFirst, false)
	assert.Equal(t, []string{"2", "4", "5", "1", "3", "6"}, ids(unverifiedFirst))

	again := SortByVerification(unverifiedFirst, true)
	assert.Equal(t, ids(verifiedFirst), ids(again), "toggling twice restores the order")
}

func TestSortLabels(t *testing.T) {
	assert.Equal(t, "Sort by Verified", SortToggleLabel(false))
	assert.Equal(t, "Sort by Unverified", SortToggleLabel(true))
	assert.True(t, ParseSort(SortParam(true)))
	assert.False(t, ParseSort(SortParam(false)))
	assert.False(t, ParseSort("garbage"))
}

func TestPaginate_PageCount(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 11, 20, 21, 99, 100, 101} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			list := farmers(make([]bool, n)...)
			want := (n + 9) / 10
			assert.Equal(t, want, TotalPages(n))

			first := Paginate(list, 1)
			last := Paginate(list, want)
			if n == 0 {
				assert.Empty(t, first.Items)
				assert.False(t, first.HasNext)
				return
			}
			assert.NotEmpty(t, first.Items)
			assert.NotEmpty(t, last.Items)

			seen := 0
			for p := 1; p <= want; p++ {
				seen += len(Paginate(list, p).Items)
			}
			assert.Equal(t, n, seen)
		})
	}
}

func TestPaginate_Clamps(t *testing.T) {
	list := farmers(make([]bool, 25)...)

	p := Paginate(list, 0)
	assert.Equal(t, 1, p.Number)
	assert.False(t, p.HasPrev)
	assert.Equal(t, 1, p.Prev())

	p = Paginate(list, 99)
	assert.Equal(t, 3, p.Number)
	assert.False(t, p.HasNext)
	assert.Equal(t, 3, p.Next())
	assert.Len(t, p.Items, 5)

	p = Paginate(list, 2)
	assert.Equal(t, 1, p.Prev())
	assert.Equal(t, 3, p.Next())
	assert.Equal(t, "11", p.Items[0].ID)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "f3a9c2d1...", ShortID("f3a9c2d1-7b44-4e0f-9a51-2c1d8e6b0a11"))
	assert.Equal(t, "42", ShortID("42"))
}

func TestDetail_StaleResponseDropped(t *testing.T) {
	var d Detail
	first := d.Begin("1")
	second := d.Begin("2")

	assert.False(t, d.Resolve(first, &models.Farmer{ID: "1"}, nil))
	assert.Equal(t, StateLoading, d.State())

	assert.True(t, d.Resolve(second, &models.Farmer{ID: "2"}, nil))
	assert.Equal(t, StateLoaded, d.State())
	assert.Equal(t, "2", d.Farmer().ID)
	assert.Equal(t, "2", second.ID())
}

func TestDetail_ErrorAndNullAreNotFound(t *testing.T) {
	var d Detail
	d.Resolve(d.Begin("1"), nil, nil)
	assert.Equal(t, StateNotFound, d.State())

	d.Resolve(d.Begin("1"), nil, errors.New("boom"))
	assert.Equal(t, StateNotFound, d.State())
	assert.Nil(t, d.Farmer())
}

func TestDetail_SetVerified(t *testing.T) {
	var d Detail
	d.SetVerified(true)
	assert.Nil(t, d.Farmer(), "nothing to update before a record is loaded")

	d.Resolve(d.Begin("42"), &models.Farmer{ID: "42"}, nil)
	d.SetVerified(true)
	assert.True(t, d.Farmer().IsVerify)
	d.SetVerified(false)
	assert.False(t, d.Farmer().IsVerify)
}

func TestPresent_NumericDescriptiveFields(t *testing.T) {
	v := Present(&models.Farmer{ID: "42", FullName: "Ravi", PinCode: "562114"})
	assert.Contains(t, v.Location.Fields, Field{"PIN Code", "562114"})
}

func TestPresent_Placeholders(t *testing.T) {
	v := Present(&models.Farmer{ID: "42"})
	assert.Equal(t, "42", v.ID)
	assert.Equal(t, Placeholder, v.Name)
	for _, s := range []Section{v.Personal, v.Farm, v.Location, v.Additional, v.Banking} {
		for _, f := range s.Fields {
			assert.Equal(t, Placeholder, f.Value, f.Label)
		}
	}
	assert.Empty(t, v.Crops)
	assert.Nil(t, v.Map)
	assert.Empty(t, v.DocumentURL)
}

func TestPresent_Map(t *testing.T) {
	zero, lat, lng := 0.0, 12.97, 77.59
	tests := []struct {
		name     string
		lat, lng *float64
		want     bool
	}{
		{"both set", &lat, &lng, true},
		{"missing lat", nil, &lng, false},
		{"missing lng", &lat, nil, false},
		{"zero lat", &zero, &lng, false},
		{"zero lng", &lat, &zero, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Present(&models.Farmer{Latitude: tt.lat, Longitude: tt.lng})
			assert.Equal(t, tt.want, v.Map != nil)
		})
	}
}

func TestVerificationFlow_Scenario(t *testing.T) {
	flow := NewVerificationFlow(false)
	assert.Equal(t, "Verify Farmer", flow.ActionLabel())
	assert.Equal(t, "Not Verified ✗", flow.StatusLabel())

	require.NoError(t, flow.Request())
	assert.Equal(t, "Are you sure you want to verify this farmer?", flow.Prompt())

	var sent []bool
	err := flow.Confirm(context.Background(), func(_ context.Context, v bool) error {
		assert.Equal(t, "Updating...", flow.ActionLabel())
		assert.True(t, flow.Disabled())
		sent = append(sent, v)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []bool{true}, sent)
	assert.Equal(t, "Verified ✓", flow.StatusLabel())
	assert.Equal(t, "Revoke Verification", flow.ActionLabel())
	assert.Equal(t, "Are you sure you want to revoke verification from this farmer?", flow.Prompt())
	assert.Equal(t, FlowIdle, flow.State())
}

func TestVerificationFlow_FailuresLeaveFlag(t *testing.T) {
	flow := NewVerificationFlow(false)
	fail := func(context.Context, bool) error { return errors.New("500") }

	for i := 0; i < 3; i++ {
		require.NoError(t, flow.Request())
		assert.Error(t, flow.Confirm(context.Background(), fail))
		assert.False(t, flow.Verified())
		assert.Equal(t, FlowIdle, flow.State())
	}
}

func TestVerificationFlow_RequiresConfirmation(t *testing.T) {
	flow := NewVerificationFlow(true)
	called := false
	err := flow.Confirm(context.Background(), func(context.Context, bool) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrNotConfirming)
	assert.False(t, called)

	require.NoError(t, flow.Request())
	flow.Cancel()
	assert.Equal(t, FlowIdle, flow.State())
	assert.ErrorIs(t, flow.Confirm(context.Background(), nil), ErrNotConfirming)
}

func TestVerificationFlow_BusyWhileUpdating(t *testing.T) {
	flow := NewVerificationFlow(false)
	require.NoError(t, flow.Request())
	err := flow.Confirm(context.Background(), func(context.Context, bool) error {
		assert.ErrorIs(t, flow.Request(), ErrBusy)
		assert.ErrorIs(t, flow.Confirm(context.Background(), nil), ErrBusy)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, flow.Verified())
}
