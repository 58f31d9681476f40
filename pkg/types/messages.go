package types

// Delivery is what the extractor hands to a sink: the tracker identifier,
// the comma-joined pick line (Radiant heroes first) and the match label.
type Delivery struct {
	ID       string `json:"tg"`
	PickLine string `json:"line"`
	Match    string `json:"match,omitempty"`
}

// Query parameters of GET /owl-esports/pickline.
const (
	ParamLine  = "line"
	ParamID    = "tg"
	ParamMatch = "match"
)

// PickLinePath is the tracker endpoint accepting pick lines.
const PickLinePath = "/owl-esports/pickline"

// PickWinRatePath takes a WinRateRequest by POST and answers a WinRate.
const PickWinRatePath = "/pick-winrate_v1"

// PickLineResponse answers a pick line. Version is the room version after
// the line was applied; Changed is false when the same line was already
// current. WinRate is set when the server has counter data for all ten
// heroes.
type PickLineResponse struct {
	Message string   `json:"message"`
	Version int      `json:"version"`
	Changed bool     `json:"changed"`
	WinRate *WinRate `json:"winrate,omitempty"`
}

// WinRateRequest names five heroes per side. Short names such as "sf" or
// "cm" are accepted.
type WinRateRequest struct {
	Radiant []string `json:"radiant"`
	Dire    []string `json:"dire"`
}

// WinRate is the predicted win rate of each side, in percent.
type WinRate struct {
	Radiant float64 `json:"radiant_winrate"`
	Dire    float64 `json:"dire_winrate"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Status reports Ready once counter data is loaded.
type Status struct {
	Ready       bool `json:"ready"`
	Trackers    int  `json:"trackers"`
	Persistence bool `json:"persistence"`
}
