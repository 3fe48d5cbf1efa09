package hebrew

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToNumber(t *testing.T) {
	cases := map[int]string{
		1:   "א׳",
		10:  "י׳",
		11:  "י״א",
		15:  "ט״ו",
		16:  "ט״ז",
		50:  "נ׳",
		115: "קט״ו",
		400: "ת׳",
		500: "ת״ק",
		613: "תרי״ג",
		900: "תת״ק",
	}
	for n, want := range cases {
		assert.Equal(t, want, ToNumber(n), "ToNumber(%d)", n)
	}

	t.Run("zero and negative render empty", func(t *testing.T) {
		assert.Equal(t, "", ToNumber(0))
		assert.Equal(t, "", ToNumber(-4))
	})

	t.Run("large values fall back to decimal", func(t *testing.T) {
		assert.Equal(t, "1000", ToNumber(1000))
	})
}

func TestFromNumber(t *testing.T) {
	assert.Equal(t, 15, FromNumber("ט״ו"))
	assert.Equal(t, 16, FromNumber("ט״ז"))
	assert.Equal(t, 613, FromNumber("תרי״ג"))
	assert.Equal(t, 40, FromNumber("ם"))
	assert.Equal(t, 0, FromNumber(""))
	assert.Equal(t, 1234, FromNumber("1234"))
}

func TestNumberRoundTrip(t *testing.T) {
	for n := 1; n <= 999; n++ {
		if got := FromNumber(ToNumber(n)); got != n {
			t.Fatalf("FromNumber(ToNumber(%d)) = %d (%q)", n, got, ToNumber(n))
		}
	}
}
