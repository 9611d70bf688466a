package bridge

import (
	"bitsouk/internal/dtc"
)

// securityDefinition builds the fixed instrument record every symbol
// shares: forex-class, 8 decimal places, satoshi-sized increments.
func securityDefinition(requestID int32, symbol string, final bool) *dtc.SecurityDefinitionResponse {
	return &dtc.SecurityDefinitionResponse{
		RequestID:                 requestID,
		Symbol:                    symbol,
		Exchange:                  exchangeName,
		SecurityType:              dtc.SecurityTypeForex,
		Description:               symbol,
		MinPriceIncrement:         1e-8,
		PriceDisplayFormat:        dtc.PriceDisplayFormatDecimal8,
		CurrencyValuePerIncrement: 1e-8,
		IsFinalMessage:            final,
		HasMarketDepthData:        true,
	}
}

// streamSecdefs sends one security definition per known ticker, marking
// the last one final.
func (c *Conn) streamSecdefs() {
	symbols := c.registry.store.Symbols()
	for i, symbol := range symbols {
		c.send(securityDefinition(0, symbol, i == len(symbols)-1))
	}
}
