package cnst

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorConstants(t *testing.T) {
	t.Run("messages", func(t *testing.T) {
		assert.Equal(t, "tenant scope required", ErrTenantScopeRequired.Error())
		assert.Equal(t, "super admin required", ErrSuperAdminRequired.Error())
		assert.Equal(t, "amount must be positive", ErrNonPositiveAmount.Error())
	})

	t.Run("errors are distinct", func(t *testing.T) {
		assert.NotEqual(t, ErrTenantScopeRequired, ErrSuperAdminRequired)
		assert.NotEqual(t, ErrInvalidBalanceType, ErrNonPositiveAmount)
	})
}
