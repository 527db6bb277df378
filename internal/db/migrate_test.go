package db

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestMigration(t *testing.T) {
	latest, err := LatestMigration()
	require.NoError(t, err)
	assert.Equal(t, int64(2), latest)
}

func TestLatestIn(t *testing.T) {
	tests := []struct {
		name    string
		fsys    fstest.MapFS
		want    int64
		wantErr bool
	}{
		{
			name: "highest wins regardless of order",
			fsys: fstest.MapFS{
				"00010_later.sql": {},
				"00002_early.sql": {},
				"README.md":       {},
			},
			want: 10,
		},
		{
			name: "empty",
			fsys: fstest.MapFS{},
			want: 0,
		},
		{
			name:    "unnumbered migration",
			fsys:    fstest.MapFS{"init.sql": {}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := latestIn(tt.fsys)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
