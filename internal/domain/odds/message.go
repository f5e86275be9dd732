package odds

import (
	"github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"
)

const MessageTypeUpdate = "ODDS_UPDATE"

type UpdateMessage struct {
	Type string       `json:"type"`
	Data []UpdateItem `json:"data"`
}

type UpdateItem struct {
	MatchID   string  `json:"matchId"`
	HomeTeam  string  `json:"homeTeam"`
	AwayTeam  string  `json:"awayTeam"`
	HomeOdds  float64 `json:"homeOdds"`
	AwayOdds  float64 `json:"awayOdds"`
	Bookmaker string  `json:"bookmaker"`
}

func NewUpdateMessage(records []Odds) UpdateMessage {
	items := make([]UpdateItem, 0, len(records))
	for _, r := range records {
		items = append(items, UpdateItem{
			MatchID:   r.MatchID,
			HomeTeam:  r.HomeTeam,
			AwayTeam:  r.AwayTeam,
			HomeOdds:  r.HomeOdds,
			AwayOdds:  r.AwayOdds,
			Bookmaker: r.Bookmaker,
		})
	}
	return UpdateMessage{Type: MessageTypeUpdate, Data: items}
}

// EncodeUpdate renders the ODDS_UPDATE frame once per pass so every
// subscriber receives the same bytes.
func EncodeUpdate(records []Odds) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(NewUpdateMessage(records)); err != nil {
		return nil, err
	}

	payload := buf.B
	if n := len(payload); n > 0 && payload[n-1] == '\n' {
		payload = payload[:n-1]
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}
