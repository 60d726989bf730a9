package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/ims-ledger/internal/domain/inventory"
)

// TestWeightedAverageCost_VectorConocido verifica el vector de referencia:
// 5 unidades a costo 10 más una entrada de 10 unidades a costo 5
// => (5×10 + 10×5) / 15 = 100/15 = 6.67 (redondeado a 2 decimales).
func TestWeightedAverageCost_VectorConocido(t *testing.T) {
	got := inventory.WeightedAverageCost(
		decimal.NewFromInt(5),  // stock actual
		decimal.NewFromInt(10), // costo actual
		decimal.NewFromInt(10), // cantidad entrada
		decimal.NewFromInt(5),  // costo entrada
	)
	assert.Equal(t, "6.67", got.Round(2).String(),
		"el costo promedio debe ser el promedio ponderado exacto")
}

// TestWeightedAverageCost_PrimeraEntrada con stock cero el costo resultante
// es el costo de la entrada.
func TestWeightedAverageCost_PrimeraEntrada(t *testing.T) {
	got := inventory.WeightedAverageCost(
		decimal.Zero, decimal.Zero,
		decimal.NewFromInt(20), decimal.RequireFromString("3.50"),
	)
	assert.True(t, got.Equal(decimal.RequireFromString("3.50")),
		"la primera recepción fija el costo promedio, got=%s", got)
}

// TestWeightedAverageCost_MismoCosto entradas al mismo costo no mueven el promedio.
func TestWeightedAverageCost_MismoCosto(t *testing.T) {
	cost := decimal.RequireFromString("7.25")
	got := inventory.WeightedAverageCost(decimal.NewFromInt(100), cost, decimal.NewFromInt(33), cost)
	assert.True(t, got.Equal(cost), "got=%s", got)
}

// TestWeightedAverageCost_SumaNoPositiva devuelve cero si el denominador no es positivo.
func TestWeightedAverageCost_SumaNoPositiva(t *testing.T) {
	got := inventory.WeightedAverageCost(decimal.Zero, decimal.NewFromInt(10), decimal.Zero, decimal.NewFromInt(5))
	assert.True(t, got.IsZero())
}
