package game

// State is the phase of a round.
type State string

const (
	StateBetting    State = "betting"
	StateDealing    State = "dealing"
	StatePlayerTurn State = "player_turn"
	StateDealerTurn State = "dealer_turn"
	StateGameOver   State = "game_over"
)

// Result is the round's single overall outcome label. Precedence at
// settlement: blackjack is never downgraded, then the first win/loss
// encountered, then push.
type Result string

const (
	ResultNone      Result = ""
	ResultWin       Result = "win"
	ResultLoss      Result = "loss"
	ResultPush      Result = "push"
	ResultBlackjack Result = "blackjack"
	ResultEvenMoney Result = "even_money"
)

// ActionResult is the uniform return value for every player action.
// Success=false means a precondition failed and no state was mutated.
type ActionResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Bust     bool   `json:"bust,omitempty"`
	GameOver bool   `json:"game_over,omitempty"`
	Charlie  bool   `json:"charlie,omitempty"`
}

func failure(message string) ActionResult {
	return ActionResult{Success: false, Message: message}
}

func success(message string) ActionResult {
	return ActionResult{Success: true, Message: message}
}
