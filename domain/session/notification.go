package session

import (
	"fmt"
	"strconv"
	"strings"
)

// Action tokens attached to choices. The transport hands them back verbatim.
const (
	TokenJoin        = "join"
	TokenLeave       = "leave"
	TokenHelp        = "help"
	TokenGuessPrefix = "guess_"
)

func GuessToken(n int) string {
	return TokenGuessPrefix + strconv.Itoa(n)
}

// ParseGuessToken extracts the number from a guess token.
func ParseGuessToken(token string) (int, bool) {
	raw, ok := strings.CutPrefix(token, TokenGuessPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Choice is one interactive option offered alongside a message.
type Choice struct {
	Label string
	Token string
}

// Notification is a message the transport should deliver to one player.
type Notification struct {
	PlayerID string
	Text     string
	Choices  []Choice
}

func notify(playerID, text string, choices ...Choice) Notification {
	return Notification{PlayerID: playerID, Text: text, Choices: choices}
}

const (
	HelpText = "ℹ️ This is a number guessing game. Join a game and guess a number between %d and %d. The first correct guess wins!"

	msgWelcome = "🎉 Welcome to the Mingle Number Guessing Game! 🎮\n\n" +
		"Invite your friends and join the game. We need at least %d players to start! 🤝\n" +
		"Press 'Join Game' to participate or 'Help' for rules. 📚"
	msgJoined          = "✅ You have joined game session %s."
	msgAlreadyInGame   = "⚠️ You are already in a game session!"
	msgNoCapacity      = "⚠️ Maximum game sessions reached. Try again later."
	msgStarted         = "🎯 The game has started! Guess a number between %d and %d."
	msgGuessPrompt     = "🔢 Make a guess:"
	msgLeft            = "🚪 You have left the game."
	msgOtherLeft       = "🚪 %s has left the game."
	msgNotInSession    = "⚠️ You are not in any game session."
	msgWon             = "🎉 %s, you won! The number was %d."
	msgOtherWon        = "🏁 %s guessed the number %d. The game is over."
	msgNotInActiveGame = "⚠️ You are not in an active game!"
	msgNotActive       = "⚠️ The game is not active!"
	msgWrongGuess      = "❌ Wrong guess! %s"
)

// Help renders the static rules text for the configured prompt range.
func (l Limits) Help() string {
	return fmt.Sprintf(HelpText, l.GuessMin, l.GuessMax)
}

// Welcome is the greeting with the main menu, sent when a player first opens the game.
func (l Limits) Welcome(playerID string) Notification {
	return notify(playerID, fmt.Sprintf(msgWelcome, l.MinPlayers),
		Choice{Label: "Join Game", Token: TokenJoin},
		Choice{Label: "Help", Token: TokenHelp},
		Choice{Label: "Leave Game", Token: TokenLeave},
	)
}

func (l Limits) guessChoices() []Choice {
	choices := make([]Choice, 0, l.GuessMax-l.GuessMin+1)
	for n := l.GuessMin; n <= l.GuessMax; n++ {
		choices = append(choices, Choice{Label: strconv.Itoa(n), Token: GuessToken(n)})
	}
	return choices
}

// hintText is the answer shown to a player after a wrong guess.
func hintText(h Hint) string {
	switch h {
	case HintHigher:
		return fmt.Sprintf(msgWrongGuess, "⬆️ Go higher!")
	case HintLower:
		return fmt.Sprintf(msgWrongGuess, "⬇️ Go lower!")
	default:
		return fmt.Sprintf(msgWrongGuess, "")
	}
}
