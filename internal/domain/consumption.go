package domain

// Per-tool hourly costs used for the start-mining preview.
const (
	FoodConsumptionRate       = 2
	DurabilityConsumptionRate = 1
)

// Consumption is the projected hourly cost of a mining session.
type Consumption struct {
	Food       int
	Durability int
}

// EstimateConsumption projects the hourly cost for toolCount tools.
func EstimateConsumption(toolCount int) Consumption {
	if toolCount < 0 {
		toolCount = 0
	}
	return Consumption{
		Food:       toolCount * FoodConsumptionRate,
		Durability: toolCount * DurabilityConsumptionRate,
	}
}
