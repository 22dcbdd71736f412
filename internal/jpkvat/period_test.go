package jpkvat_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sheet2jpk/internal/jpkvat"
)

func TestParsePeriod(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		in        string
		wantBegin time.Time
		wantEnd   time.Time
	}{
		{in: "2023/11", wantBegin: date(2023, time.November, 1), wantEnd: date(2023, time.November, 30)},
		{in: "2023-12", wantBegin: date(2023, time.December, 1), wantEnd: date(2023, time.December, 31)},
		{in: "2024/02", wantBegin: date(2024, time.February, 1), wantEnd: date(2024, time.February, 29)},
		{in: "2023/2", wantBegin: date(2023, time.February, 1), wantEnd: date(2023, time.February, 28)},
	} {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			p, err := jpkvat.ParsePeriod(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBegin, p.Begin())
			assert.Equal(t, tt.wantEnd, p.End())
		})
	}
}

func TestParsePeriod_Errors(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "2023", "2023/13", "2023/00", "abcd/11", "2023/xx"} {
		_, err := jpkvat.ParsePeriod(in)
		assert.Error(t, err, in)
	}
}

func TestPeriod_StringAndContains(t *testing.T) {
	t.Parallel()

	p := jpkvat.PeriodOf(date(2023, time.March, 17))
	assert.Equal(t, "2023/03", p.String())
	assert.True(t, p.Contains(date(2023, time.March, 31)))
	assert.False(t, p.Contains(date(2023, time.April, 1)))
}
