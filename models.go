package main

// ConsumptionResponse is the JSON document returned by the Enedis data
// endpoints. Only the fields the exporters need are declared; anything else
// the API sends along is ignored.
type ConsumptionResponse struct {
	Etat   Etat   `json:"etat"`
	Graphe Graphe `json:"graphe"`
}

// Etat is the service-side status of the report.
type Etat struct {
	Valeur string `json:"valeur"`
}

// Graphe holds the readings together with the window they describe.
// Decalage is the number of granularity units the first reading precedes
// Periode.DateDebut.
type Graphe struct {
	Data     []DataPoint `json:"data"`
	Periode  Periode     `json:"periode"`
	Decalage int         `json:"decalage"`
}

// DataPoint is one reading. Valeur is a pointer so a point carrying no value
// at all can be told apart from a genuine zero reading.
type DataPoint struct {
	Valeur *float64 `json:"valeur"`
	Ordre  int      `json:"ordre"`
}

// Periode is the reference window of the report, dates in DD/MM/YYYY.
type Periode struct {
	DateDebut string `json:"dateDebut"`
	DateFin   string `json:"dateFin"`
}

// Record is one time/value pair in an export file.
type Record struct {
	Time  string  `json:"time"`
	Conso float64 `json:"conso"`
}
