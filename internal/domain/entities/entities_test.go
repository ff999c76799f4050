package entities

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestMergeFungible_WeightedAverage(t *testing.T) {
	qty, basis := MergeFungible(dec("10"), dec("5"), dec("10"), dec("15"))
	assert.True(t, qty.Equal(dec("20")), "quantity: %s", qty)
	assert.True(t, basis.Equal(dec("10")), "basis: %s", basis)
}

func TestMergeFungible_UnevenLots(t *testing.T) {
	// 3 units at 2.00 plus 1 unit at 6.00 averages to 3.00
	qty, basis := MergeFungible(dec("3"), dec("2"), dec("1"), dec("6"))
	assert.True(t, qty.Equal(dec("4")))
	assert.True(t, basis.Equal(dec("3")))
}

func TestMergeFungible_ZeroBasisAddition(t *testing.T) {
	// Airdropped units dilute the average cost
	qty, basis := MergeFungible(dec("10"), dec("4"), dec("10"), dec("0"))
	assert.True(t, qty.Equal(dec("20")))
	assert.True(t, basis.Equal(dec("2")))
}

func TestPositionContributions_Fungible(t *testing.T) {
	qty := dec("2")
	price := dec("5")
	p := Position{
		AssetType:     AssetTypeFungible,
		QuantityOwned: &qty,
		CostBasis:     dec("3"),
		LatestPrice:   &price,
	}
	assert.True(t, p.BasisContribution().Equal(dec("6")))
	assert.True(t, p.ValueContribution().Equal(dec("10")))
}

func TestPositionContributions_NonFungible(t *testing.T) {
	tokenID := "42"
	price := dec("150")
	p := Position{
		AssetType:   AssetTypeNonFungible,
		TokenID:     &tokenID,
		CostBasis:   dec("100"),
		LatestPrice: &price,
	}
	assert.True(t, p.BasisContribution().Equal(dec("100")))
	assert.True(t, p.ValueContribution().Equal(dec("150")))
}

func TestPositionContributions_MissingPrice(t *testing.T) {
	qty := dec("7")
	p := Position{
		AssetType:     AssetTypeFungible,
		QuantityOwned: &qty,
		CostBasis:     dec("3"),
	}
	assert.True(t, p.BasisContribution().Equal(dec("21")))
	assert.True(t, p.ValueContribution().IsZero())
}

func TestAssetTypeValid(t *testing.T) {
	assert.True(t, AssetTypeFungible.Valid())
	assert.True(t, AssetTypeNonFungible.Valid())
	assert.False(t, AssetType("ERC-1155").Valid())
	assert.False(t, AssetType("").Valid())
}
