// Package domain models tropical-cyclone track fixes in the ATCF
// (Automated Tropical Cyclone Forecasting) record format.
//
// # Data Source
//
// Track decks are published by the National Hurricane Center under
// https://ftp.nhc.noaa.gov/atcf/. Each storm has up to three decks:
//
//	a-deck  "aal112017.dat"  objective aids and official forecasts (OFCL, HWRF, CARQ, ...)
//	b-deck  "bal112017.dat"  best track reanalysis (BEST)
//	f-deck  "fal112017.dat"  fixes (satellite, aircraft, radar)
//
// Historical storms live in the yearly archive as gzip files
// ("archive/2017/bal112017.dat.gz"); active storms live under "aid_public/"
// and "btk/".
//
// # Line Format
//
// One fix per line, comma separated, fields right aligned:
//
//	AL, 11, 2017090500,   , BEST,   0, 168N,  571W, 115,  945, HU,  34, NEQ,  180,  150,  100,  170, 1010, ...
//	|   |   |               |     |    |     |     |    |     |   |    |    +- radii NE, SE, SW, NW (nmi)
//	|   |   |               |     |    |     |     |    |     |   |    +- quadrant code
//	|   |   |               |     |    |     |     |    |     |   +- isotach threshold (kt), 0 = none
//	|   |   |               |     |    |     |     |    |     +- development level (TD, TS, HU, EX, ...)
//	|   |   |               |     |    |     |     |    +- central pressure (hPa)
//	|   |   |               |     |    |     |     +- maximum sustained wind (kt)
//	|   |   |               |     |    +-----+- tenths of degrees with hemisphere suffix
//	|   |   |               |     +- forecast hour (tau)
//	|   |   |               +- record type (technique)
//	|   |   +- YYYYMMDDHH (UTC)
//	|   +- storm number
//	+- basin
//
// Later columns carry the background pressure (pressure of the outermost
// closed isobar), radius of that isobar, radius of maximum winds, gusts, eye
// diameter, subregion, seas, forecaster initials, direction and speed of
// motion, and the storm name. A fix with four quadrant radii for 34, 50 and
// 64 kt appears as three rows sharing one timestamp.
//
// # Storm Identity
//
// A storm is identified by basin, two-digit storm number, and year, e.g.
// "AL112017" for Irma. A name and year ("irma2017") must be resolved to that
// form through the NHC storm index. See [ParseStormID].
//
// # Units
//
// Positions are signed decimal degrees internally (south and west negative).
// Radii are nautical miles, winds and forward speed are knots, pressures are
// hectopascals.
package domain
