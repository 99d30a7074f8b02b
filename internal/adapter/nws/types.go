package nws

// NWS API response shapes. Validation tags mirror the upstream contract: a
// feature without an id, event, description, or effective time fails the
// whole fetch, while an absent features field is a valid empty result.

type alertsResponse struct {
	Features []alertFeature `json:"features" validate:"omitempty,dive"`
}

type alertFeature struct {
	ID         string          `json:"id" validate:"required"`
	Properties alertProperties `json:"properties"`
}

type alertProperties struct {
	Event       string `json:"event" validate:"required"`
	Headline    string `json:"headline"`
	Description string `json:"description" validate:"required"`
	Severity    string `json:"severity"`
	Urgency     string `json:"urgency"`
	Certainty   string `json:"certainty"`
	AreaDesc    string `json:"areaDesc"`
	Effective   string `json:"effective" validate:"required"`
	Expires     string `json:"expires"`
	Onset       string `json:"onset"`
	Instruction string `json:"instruction"`
}

type pointResponse struct {
	Properties pointProperties `json:"properties"`
}

type pointProperties struct {
	ObservationStations string `json:"observationStations" validate:"required,url"`
}

type stationsResponse struct {
	Features []stationFeature `json:"features"`
}

type stationFeature struct {
	Properties stationProperties `json:"properties"`
}

type stationProperties struct {
	StationIdentifier string `json:"stationIdentifier"`
}

// measurement is the nullable numeric wrapper used throughout NWS
// observation payloads.
type measurement struct {
	Value *float64 `json:"value"`
}

func (m measurement) orZero() float64 {
	if m.Value == nil {
		return 0
	}
	return *m.Value
}

type observationResponse struct {
	Properties observationProperties `json:"properties"`
}

type observationProperties struct {
	Temperature        measurement `json:"temperature"`
	RelativeHumidity   measurement `json:"relativeHumidity"`
	WindSpeed          measurement `json:"windSpeed"`
	WindDirection      measurement `json:"windDirection"`
	BarometricPressure measurement `json:"barometricPressure"`
	Visibility         measurement `json:"visibility"`
	TextDescription    string      `json:"textDescription"`
}
