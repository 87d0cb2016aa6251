package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnNames(t *testing.T) {
	assert.Equal(t, "2013_14", FiscalYearLabel(2013))
	assert.Equal(t, "2099_00", FiscalYearLabel(2099))
	assert.Equal(t, "Tax_Collection_Cr_2016_17_Residential", CollectionColumn(2016, PropertyResidential))
	assert.Equal(t, "Tax_Demand_Cr_2017_18_Commercial", DemandColumn(2017, PropertyCommercial))
	assert.True(t, IsFigureColumn("Tax_Demand_Cr_2017_18_Commercial"))
	assert.False(t, IsFigureColumn("Ward_Name"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "Pune", NormalizeCity(" pune "))
	assert.Equal(t, "", NormalizeCity("Mumbai"))
	assert.Equal(t, PropertyCommercial, NormalizePropertyType("COMMERCIAL"))
	assert.Equal(t, "", NormalizePropertyType("industrial"))
}

func TestDataset_SumAndHasColumn(t *testing.T) {
	col := CollectionColumn(2013, PropertyResidential)
	d := &Dataset{
		City:    "Pune",
		Columns: []string{"Ward_Name", col},
		Records: []HistoricalRecord{
			{Area: "Aundh", Figures: map[string]float64{col: 1.5}},
			{Area: "Baner", Figures: map[string]float64{col: 2.25}},
			{Area: "Empty", Figures: map[string]float64{}},
		},
	}
	assert.True(t, d.HasColumn(col))
	assert.False(t, d.HasColumn(DemandColumn(2013, PropertyResidential)))
	assert.InDelta(t, 3.75, d.Sum(col), 1e-9)
	assert.Equal(t, []int{2013, 2014, 2015, 2016, 2017}, HistoricalYears())
}
