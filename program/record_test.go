package program

import (
	"testing"

	"github.com/happy-sdk/happy/pkg/devel/testutils"
)

func TestNewRejectsAddressBelowFloor(t *testing.T) {
	_, err := New(USER_SPACE_BASE-1, "valid-name", "valid-domain", OnTrue)
	testutils.Error(t, err)
}

func TestNewRejectsInvalidSlugs(t *testing.T) {
	_, err := New(USER_SPACE_BASE, "bad name", "valid-domain", OnTrue)
	testutils.Error(t, err)

	_, err = New(USER_SPACE_BASE, "valid-name", "bad--domain", OnTrue)
	testutils.Error(t, err)
}

func TestNewAcceptsValidRecord(t *testing.T) {
	p, err := New(USER_SPACE_BASE, "porch-light", "lighting", OnSwitchTrue)
	testutils.NoError(t, err)
	testutils.Equal(t, USER_SPACE_BASE, p.Address)
	testutils.Equal(t, StatusIdle, p.Status())
	testutils.False(t, p.Enabled())
}

func TestRecordBodyStopRoundTrip(t *testing.T) {
	p, err := New(USER_SPACE_BASE, "p", "d", OnTrue)
	testutils.NoError(t, err)

	testutils.False(t, p.StopBody())

	var stopped bool
	p.SetBodyStop(func() { stopped = true })
	testutils.True(t, p.StopBody())
	testutils.True(t, stopped)
}
