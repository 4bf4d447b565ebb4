package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// MatchID: obrigatório para subscribe/unsubscribe
type ClientMsg struct {
	Type    string `json:"type"`
	MatchID string `json:"matchId"`
}

// MatchUpdate representa uma atualização de partida enviada aos clientes
type MatchUpdate struct {
	MatchID string      `json:"matchId"`
	Payload interface{} `json:"payload"`
}
