package scripthost

import (
	"errors"
	"testing"

	"github.com/happy-sdk/happy/pkg/devel/testutils"
)

func TestClassify(t *testing.T) {
	testutils.Equal(t, FaultNone, Classify(nil))
	testutils.Equal(t, FaultCondition, Classify(WrapCondition(errors.New("boom"))))
	testutils.Equal(t, FaultBody, Classify(WrapBody(errors.New("boom"))))
	testutils.Equal(t, FaultBenign, Classify(WrapBenign(errors.New("boom"))))
	testutils.Equal(t, FaultBody, Classify(errors.New("unmarked")))
}

func TestSanitizeAndRuntimeErrorMessage(t *testing.T) {
	msg := RuntimeErrorMessage("CR", "line one\r\nline two\n")
	testutils.Equal(t, "CR: line one line two ", msg)
}

func TestGuardRecoversPanic(t *testing.T) {
	_, err := Guard(func() (int, error) {
		panic("boom")
	})
	testutils.Error(t, err)
	testutils.Equal(t, FaultBody, Classify(err))
}
