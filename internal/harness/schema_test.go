package harness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestSchemaManager_EnsureTable(t *testing.T) {
	t.Parallel()

	families := []string{"cf"}
	splits := []string{"3", "6"}

	t.Run("creates a table that does not exist yet", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		admin := NewMockadminAPI(ctrl)
		admin.EXPECT().ListTables().Return([]string{"other"}, nil)
		admin.EXPECT().CreateTable("test", families, splits).Return(nil)

		m := NewSchemaManager(admin)
		require.NoError(t, m.EnsureTable("test", families, splits))
	})

	t.Run("stale table is disabled before delete", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		admin := NewMockadminAPI(ctrl)
		gomock.InOrder(
			admin.EXPECT().ListTables().Return([]string{"test"}, nil),
			admin.EXPECT().DisableTable("test").Return(nil),
			admin.EXPECT().DeleteTable("test").Return(nil),
			admin.EXPECT().CreateTable("test", families, splits).Return(nil),
		)

		m := NewSchemaManager(admin)
		require.NoError(t, m.EnsureTable("test", families, splits))
	})

	t.Run("administrative failures are fatal", func(t *testing.T) {
		t.Parallel()

		tests := map[string]func(admin *MockadminAPI){
			"list fails": func(admin *MockadminAPI) {
				admin.EXPECT().ListTables().Return(nil, errors.New("coordinator unreachable"))
			},
			"disable fails": func(admin *MockadminAPI) {
				admin.EXPECT().ListTables().Return([]string{"test"}, nil)
				admin.EXPECT().DisableTable("test").Return(errors.New("boom"))
			},
			"delete fails": func(admin *MockadminAPI) {
				admin.EXPECT().ListTables().Return([]string{"test"}, nil)
				admin.EXPECT().DisableTable("test").Return(nil)
				admin.EXPECT().DeleteTable("test").Return(errors.New("boom"))
			},
			"create fails": func(admin *MockadminAPI) {
				admin.EXPECT().ListTables().Return(nil, nil)
				admin.EXPECT().CreateTable("test", families, splits).Return(errors.New("boom"))
			},
		}

		for name, setup := range tests {
			setup := setup
			t.Run(name, func(t *testing.T) {
				t.Parallel()
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				admin := NewMockadminAPI(ctrl)
				setup(admin)

				m := NewSchemaManager(admin)
				require.Error(t, m.EnsureTable("test", families, splits))
			})
		}
	})
}
