package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/printflow/internal/apperror"
	"github.com/mmeshcher/printflow/internal/model"
)

type clientPayload struct {
	CompanyName string          `json:"companyName" validate:"required,max=200"`
	Acronym     string          `json:"acronym" validate:"required,acronym"`
	TaxID       string          `json:"taxId" validate:"required,cnpj"`
	Address     model.Address   `json:"address"`
	RotaryPrice decimal.Decimal `json:"rotaryPrice" validate:"gte=0"`
}

type orderPayload struct {
	ProductionType model.ProductionType `json:"productionType" validate:"required"`
	FabricWidth    decimal.NullDecimal  `json:"fabricWidth" validate:"nullgt=0"`
}

func validAddress() model.Address {
	return model.Address{
		Street:       "Rua das Flores",
		Number:       "100",
		Neighborhood: "Centro",
		City:         "Blumenau",
		State:        "SC",
		ZipCode:      "89010-000",
	}
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrValidation.Code, appErr.Code)

	names := make([]string, 0, len(appErr.Fields))
	for _, f := range appErr.Fields {
		names = append(names, f.Field)
	}
	return names
}

func TestStructValid(t *testing.T) {
	err := Struct(&clientPayload{
		CompanyName: "Malharia Azul",
		Acronym:     "MAZ",
		TaxID:       "11.222.333/0001-81",
		Address:     validAddress(),
		RotaryPrice: decimal.RequireFromString("12.50"),
	})
	assert.NoError(t, err)
}

func TestStructReportsAllFields(t *testing.T) {
	addr := validAddress()
	addr.State = "S"

	err := Struct(&clientPayload{
		CompanyName: "",
		Acronym:     "maz",
		TaxID:       "11222333000180",
		Address:     addr,
		RotaryPrice: decimal.NewFromInt(-1),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.ElementsMatch(t,
		[]string{"companyName", "acronym", "taxId", "address.state", "rotaryPrice"},
		fieldNames(t, err))
}

func TestProductionTypeValidation(t *testing.T) {
	tests := []struct {
		name   string
		pt     model.ProductionType
		fields []string
	}{
		{
			name: "rotary",
			pt:   model.Rotary(150),
		},
		{
			name: "localized",
			pt:   model.Localized(model.SizeQuantity{Size: "M", Quantity: 10}),
		},
		{
			name:   "rotary without meters",
			pt:     model.Rotary(0),
			fields: []string{"productionType.rotary.meters"},
		},
		{
			name:   "localized without sizes",
			pt:     model.Localized(),
			fields: []string{"productionType.localized.sizes"},
		},
		{
			name:   "zero quantity",
			pt:     model.Localized(model.SizeQuantity{Size: "G", Quantity: 0}),
			fields: []string{"productionType.localized.sizes[0].quantity"},
		},
		{
			name:   "kind without payload",
			pt:     model.ProductionType{Kind: model.ProductionLocalized},
			fields: []string{"productionType.type"},
		},
		{
			name:   "unknown kind",
			pt:     model.ProductionType{Kind: "screen"},
			fields: []string{"productionType.type"},
		},
		{
			name:   "missing",
			fields: []string{"productionType"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(&orderPayload{ProductionType: tt.pt})
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.fields, fieldNames(t, err))
		})
	}
}

func TestNullDecimal(t *testing.T) {
	assert.NoError(t, Struct(&orderPayload{ProductionType: model.Rotary(1)}))
	assert.NoError(t, Struct(&orderPayload{
		ProductionType: model.Rotary(1),
		FabricWidth:    decimal.NewNullDecimal(decimal.RequireFromString("1.6")),
	}))

	for _, width := range []string{"0", "-3"} {
		t.Run(width, func(t *testing.T) {
			err := Struct(&orderPayload{
				ProductionType: model.Rotary(1),
				FabricWidth:    decimal.NewNullDecimal(decimal.RequireFromString(width)),
			})
			assert.Equal(t, []string{"fabricWidth"}, fieldNames(t, err))

			var appErr *apperror.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "fabricWidth must be greater than 0", appErr.Fields[0].Message)
		})
	}
}

func TestNullDecimalNonNegative(t *testing.T) {
	type sheetPayload struct {
		Temperature decimal.NullDecimal `json:"temperature" validate:"nullgte=0"`
	}

	assert.NoError(t, Struct(&sheetPayload{}))
	assert.NoError(t, Struct(&sheetPayload{Temperature: decimal.NewNullDecimal(decimal.Zero)}))

	err := Struct(&sheetPayload{Temperature: decimal.NewNullDecimal(decimal.RequireFromString("-0.5"))})
	assert.Equal(t, []string{"temperature"}, fieldNames(t, err))
}
