package dto

import "time"

type ConnectInput struct {
	Platform string
}

type ConnectOutput struct {
	Platform string
	Status   string
	ReadyAt  time.Time
}

type DisconnectInput struct {
	Platform string
}

type PlatformOutput struct {
	Name        string
	Status      string
	ConnectedAt time.Time
}
