package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseHumanID(t *testing.T) {
	id, err := ParseHumanID(" 70012 ")
	assert.NoError(t, err)
	assert.Equal(t, int64(70012), id)

	for _, bad := range []string{"", "abc", "-5", "0"} {
		_, err := ParseHumanID(bad)
		assert.Error(t, err, bad)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList([]string{"Spanish, French", " ", "German", "Italian,,"})
	assert.Equal(t, []string{"Spanish", "French", "German", "Italian"}, got)
	assert.Nil(t, SplitList(nil))
}
