package domain

// GameResult is the append-only historical record persisted when a round or
// game concludes. Re-sending for the same game upserts.
type GameResult struct {
	GameID         string `json:"gameId" gorm:"primaryKey;column:game_id"`
	Code           string `json:"code" gorm:"index;not null"`
	Winner         Winner `json:"winner" gorm:"index;not null"`
	Round          int    `json:"round"`
	MaxRounds      int    `json:"maxRounds"`
	ImpostorID     string `json:"impostorId" gorm:"index"`
	ImpostorName   string `json:"impostorName"`
	PlayerCount    int    `json:"playerCount"`
	CreatedAt      int64  `json:"createdAt" gorm:"index"`
	EndedAt        int64  `json:"endedAt" gorm:"index"`
	Duration       int    `json:"duration"`
	ImpostorPoints int    `json:"impostorPoints"`
	PlayerPoints   int    `json:"playerPoints"`
	CluesGiven     int    `json:"cluesGiven"`
	VotesCast      int    `json:"votesCast"`
}

// GameStatsQuery filters historical results. Nil pointers mean "no filter".
type GameStatsQuery struct {
	Winner     *Winner `json:"winner,omitempty"`
	MinRounds  *int    `json:"minRounds,omitempty"`
	MaxRounds  *int    `json:"maxRounds,omitempty"`
	MinPlayers *int    `json:"minPlayers,omitempty"`
	MaxPlayers *int    `json:"maxPlayers,omitempty"`
	StartDate  *int64  `json:"startDate,omitempty"`
	EndDate    *int64  `json:"endDate,omitempty"`
	ImpostorID string  `json:"impostorId,omitempty"`
	Limit      int     `json:"limit,omitempty"`
	Offset     int     `json:"offset,omitempty"`
}

type GeneralStats struct {
	TotalGames      int     `json:"totalGames"`
	ImpostorWins    int     `json:"impostorWins"`
	PlayersWins     int     `json:"playersWins"`
	AverageDuration float64 `json:"averageDuration"`
	AveragePlayers  float64 `json:"averagePlayers"`
	AverageRounds   float64 `json:"averageRounds"`
}

type ImpostorStats struct {
	TotalGames    int           `json:"totalGames"`
	Wins          int           `json:"wins"`
	Losses        int           `json:"losses"`
	WinRate       float64       `json:"winRate"`
	AveragePoints float64       `json:"averagePoints"`
	Games         []*GameResult `json:"games"`
}
