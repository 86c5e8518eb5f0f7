package vat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/pkg/vat"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "BE0123456749", vat.Normalize("be 0123.456.749"))
	assert.Equal(t, "BE0123456749", vat.Normalize("BE-0123-456-749"))
}

func TestValidateBelgian(t *testing.T) {
	cases := map[string]bool{
		"BE0123456749": true,
		"BE123456749":  true, // 9 dígitos, formato antiguo
		"BE0123456789": false,
		"BE2123456749": false,
		"BE01234567":   false,
		"BE01234567AB": false,
	}
	for number, ok := range cases {
		err := vat.ValidateBelgian(number)
		if ok {
			assert.NoError(t, err, number)
		} else {
			assert.Error(t, err, number)
		}
	}
}

func TestComputeBelgianCheck(t *testing.T) {
	check, err := vat.ComputeBelgianCheck("01234567")
	require.NoError(t, err)
	assert.Equal(t, 49, check)

	_, err = vat.ComputeBelgianCheck("123")
	assert.Error(t, err)
}

func TestEnterpriseNumber(t *testing.T) {
	assert.Equal(t, "0123456749", vat.EnterpriseNumber("BE0123456749"))
	assert.Equal(t, "0123456749", vat.EnterpriseNumber("BE123456749"))
	assert.True(t, vat.IsBelgian("BE0123456749"))
	assert.False(t, vat.IsBelgian("FR12345678901"))
}
