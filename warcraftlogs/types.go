package warcraftlogs

import "time"

type Role string

const (
	RoleTank   Role = "Tank"
	RoleHealer Role = "Healer"
	RoleDPS    Role = "DPS"
	RoleNone   Role = ""
)

// Participant is one player actor of a report.
type Participant struct {
	ExternalId string `json:"external_id"`
	Name       string `json:"name"`
	Class      string `json:"class"`
	Server     string `json:"server,omitempty"`
	Role       Role   `json:"role,omitempty"`
}

// Report is immutable once fetched.
type Report struct {
	Code         string        `json:"code"`
	Title        string        `json:"title"`
	StartTime    time.Time     `json:"start_time"`
	EndTime      time.Time     `json:"end_time"`
	Owner        string        `json:"owner"`
	Zone         string        `json:"zone"`
	Participants []Participant `json:"participants"`
}

/* GraphQL wire shapes */

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type reportResponse struct {
	Data struct {
		ReportData struct {
			Report *wireReport `json:"report"`
		} `json:"reportData"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

type wireReport struct {
	Code      string  `json:"code"`
	Title     string  `json:"title"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	Owner     *struct {
		Name string `json:"name"`
	} `json:"owner"`
	Zone *struct {
		Name string `json:"name"`
	} `json:"zone"`
	MasterData *struct {
		Actors []wireActor `json:"actors"`
	} `json:"masterData"`
	PlayerDetails *wirePlayerDetails `json:"playerDetails"`
}

type wireActor struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	SubType string `json:"subType"`
	Server  string `json:"server"`
}

type wirePlayerDetails struct {
	Data struct {
		PlayerDetails struct {
			Tanks   []wireActor `json:"tanks"`
			Healers []wireActor `json:"healers"`
			DPS     []wireActor `json:"dps"`
		} `json:"playerDetails"`
	} `json:"data"`
}

const reportQuery = `query ($code: String!) {
  reportData {
    report(code: $code) {
      code
      title
      startTime
      endTime
      owner { name }
      zone { name }
      masterData { actors(type: "Player") { id name type subType server } }
      playerDetails(startTime: 0, endTime: 999999999999)
    }
  }
}`
