package models

// dropdown shapes, cached per guild as <Type>List:<guild_id>

type AllGuildMember struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type AllTeam struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type AllCharacter struct {
	ID    int           `json:"id"`
	Name  string        `json:"name"`
	Class string        `json:"class"`
	Role  CharacterRole `json:"role"`
}

type AllScenario struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	Difficulty Difficulty `json:"difficulty"`
}
