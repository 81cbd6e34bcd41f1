/*
config.go - Engine configuration: rates, allowances, pairing window

PURPOSE:
  Holds every airline-specific constant the engine needs, as one explicit
  immutable object passed into calculation entry points. There are no
  package-level mutable rate tables; a Config is built once at startup and
  shared read-only.

PAY BANDS:
  Two positions, two fixed bands. Fixed monthly components (basic, housing,
  transport) are flat per month regardless of duty count; the hourly flight
  rate multiplies clock (or fixed ASBY) hours. The per-diem rate is identical
  for both positions.

SEE ALSO:
  - pay.go: hourlyRate lookup
  - aggregate.go: fixed component table
  - pairing.go: pairing window
*/
package salary

import "github.com/shopspring/decimal"

// PositionRates is the pay band for one position.
type PositionRates struct {
	BasicSalary        decimal.Decimal
	HousingAllowance   decimal.Decimal
	TransportAllowance decimal.Decimal
	HourlyRate         decimal.Decimal // flight pay per duty hour
}

// Config is the immutable engine configuration.
type Config struct {
	// BaseAirport anchors outbound/inbound classification of layover sectors.
	BaseAirport string

	// PerDiemRate is paid per rest hour during a layover, both positions.
	PerDiemRate decimal.Decimal

	// ASBYHours is the fixed paid duration of an airport standby.
	ASBYHours decimal.Decimal

	// PairingWindowDays bounds how many days after the outbound an inbound
	// leg may start and still close the pair.
	PairingWindowDays int

	// RestMinHours/RestMaxHours bound the sane rest band; a derived rest
	// outside it signals a pairing error and is surfaced as a warning.
	RestMinHours decimal.Decimal
	RestMaxHours decimal.Decimal

	CCM  PositionRates
	SCCM PositionRates
}

// Rates returns the pay band for a position.
func (c Config) Rates(p Position) (PositionRates, error) {
	switch p {
	case PositionCCM:
		return c.CCM, nil
	case PositionSCCM:
		return c.SCCM, nil
	}
	return PositionRates{}, ErrUnknownPosition
}

// DefaultConfig returns the production configuration: a Dubai-based carrier
// paying in AED.
func DefaultConfig() Config {
	return Config{
		BaseAirport:       "DXB",
		PerDiemRate:       decimal.RequireFromString("8.82"),
		ASBYHours:         decimal.RequireFromString("4.0"),
		PairingWindowDays: 5,
		RestMinHours:      decimal.RequireFromString("8"),
		RestMaxHours:      decimal.RequireFromString("96"),
		CCM: PositionRates{
			BasicSalary:        decimal.RequireFromString("3275"),
			HousingAllowance:   decimal.RequireFromString("4000"),
			TransportAllowance: decimal.RequireFromString("1000"),
			HourlyRate:         decimal.RequireFromString("50"),
		},
		SCCM: PositionRates{
			BasicSalary:        decimal.RequireFromString("4275"),
			HousingAllowance:   decimal.RequireFromString("5000"),
			TransportAllowance: decimal.RequireFromString("1000"),
			HourlyRate:         decimal.RequireFromString("62"),
		},
	}
}
