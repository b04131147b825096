package network

const (
	MsgTypeHeartbeat = 1

	// client -> server
	MsgTypePlayerMovement      = 101
	MsgTypeChatMessage         = 102
	MsgTypeInteractableUpdate  = 103
	MsgTypeInteractableCommand = 104

	// server -> client
	MsgTypeInitialize          = 301
	MsgTypePlayerJoined        = 302
	MsgTypePlayerMoved         = 303
	MsgTypePlayerDisconnect    = 304
	MsgTypeCommandResponse     = 305
	MsgTypeTownSettingsUpdated = 306
	MsgTypeTownClosing         = 307
)
