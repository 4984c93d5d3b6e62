package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seistrack/famview/pkg/errors"
)

func TestFamilyValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		family  Family
		wantErr bool
	}{
		{
			name: "valid family",
			family: Family{
				ID:        1,
				Members:   []EventID{10, 11, 12},
				Core:      11,
				Start:     100,
				Longevity: 5,
			},
		},
		{
			name: "single member core",
			family: Family{
				ID:      2,
				Members: []EventID{7},
				Core:    7,
			},
		},
		{
			name:    "no members",
			family:  Family{ID: 3, Core: 1},
			wantErr: true,
		},
		{
			name: "core not a member",
			family: Family{
				ID:      4,
				Members: []EventID{1, 2, 3},
				Core:    9,
			},
			wantErr: true,
		},
		{
			name: "negative longevity",
			family: Family{
				ID:        5,
				Members:   []EventID{1},
				Core:      1,
				Longevity: -1,
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.family.Validate()
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrCodeFamilyInvalid))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFamilyHasMemberAndSize(t *testing.T) {
	t.Parallel()

	fam := Family{ID: 1, Members: []EventID{3, 5, 8}, Core: 5}
	assert.True(t, fam.HasMember(3))
	assert.True(t, fam.HasMember(8))
	assert.False(t, fam.HasMember(4))
	assert.Equal(t, 3, fam.Size())
}

func TestFamilyEnd(t *testing.T) {
	t.Parallel()

	fam := Family{Start: 100, Longevity: 42.5}
	assert.Equal(t, 142.5, fam.End())
}
