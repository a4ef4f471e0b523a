package events

// Handler is the closed capability interface plugins implement. Embed
// BaseHandler and override only the events you care about.
type Handler interface {
	OnGameStart(p *GameStartPayload) error
	OnLocationEnter(p *LocationEnterPayload) error
	OnCombatStart(p *CombatStartPayload) error
	OnCombatTurn(p *CombatTurnPayload) error
	OnCombatResolve(p *CombatResolvePayload) error
	OnCreatureDefeated(p *CreatureDefeatedPayload) error
	OnItemCollected(p *ItemCollectedPayload) error
	OnQuestComplete(p *QuestCompletePayload) error
	OnDialogueStart(p *DialogueStartPayload) error
}

// Stateful is an optional interface for plugins that carry state worth
// keeping across save/restore. State blobs ride along in snapshots keyed by
// plugin ID.
type Stateful interface {
	PluginState() ([]byte, error)
	RestorePluginState(data []byte) error
}

// BaseHandler is a no-op implementation of every event. Plugins embed it so
// they only write the methods for events they handle.
type BaseHandler struct{}

// OnGameStart does nothing
func (BaseHandler) OnGameStart(*GameStartPayload) error { return nil }

// OnLocationEnter does nothing
func (BaseHandler) OnLocationEnter(*LocationEnterPayload) error { return nil }

// OnCombatStart does nothing
func (BaseHandler) OnCombatStart(*CombatStartPayload) error { return nil }

// OnCombatTurn does nothing
func (BaseHandler) OnCombatTurn(*CombatTurnPayload) error { return nil }

// OnCombatResolve does nothing
func (BaseHandler) OnCombatResolve(*CombatResolvePayload) error { return nil }

// OnCreatureDefeated does nothing
func (BaseHandler) OnCreatureDefeated(*CreatureDefeatedPayload) error { return nil }

// OnItemCollected does nothing
func (BaseHandler) OnItemCollected(*ItemCollectedPayload) error { return nil }

// OnQuestComplete does nothing
func (BaseHandler) OnQuestComplete(*QuestCompletePayload) error { return nil }

// OnDialogueStart does nothing
func (BaseHandler) OnDialogueStart(*DialogueStartPayload) error { return nil }
