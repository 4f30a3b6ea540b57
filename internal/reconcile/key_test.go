package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyValidate(t *testing.T) {
	tests := []struct {
		name    string
		key     Key
		wantErr bool
	}{
		{name: "series", key: SeriesKey("acc", MetricFollowers)},
		{name: "series without account", key: SeriesKey("", MetricFollowers), wantErr: true},
		{name: "series with post metric", key: SeriesKey("acc", MetricLikes), wantErr: true},
		{name: "dimension", key: DimensionKey(FamilyCity, 4, "Lagos, Nigeria")},
		{name: "dimension without parent", key: DimensionKey(FamilyAge, 0, "18-24"), wantErr: true},
		{name: "dimension without label", key: DimensionKey(FamilyGender, 4, ""), wantErr: true},
		{name: "dimension unknown family", key: DimensionKey("country", 4, "NG"), wantErr: true},
		{name: "post insight", key: PostInsightKey(9, MetricSaves)},
		{name: "post insight with account metric", key: PostInsightKey(9, MetricFollowers), wantErr: true},
		{name: "zero key", key: Key{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.key.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "series:acc:reach", SeriesKey("acc", MetricReach).String())
	assert.Equal(t, "dimension:age:7:25-34", DimensionKey(FamilyAge, 7, "25-34").String())
	assert.Equal(t, "post_insight:12:likes", PostInsightKey(12, MetricLikes).String())
}
