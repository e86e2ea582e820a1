// File: velora/models/call.go
package models

import "time"

// CallStatus is the lifecycle state of a call session.
type CallStatus string

const (
	CallRinging  CallStatus = "ringing"
	CallAccepted CallStatus = "accepted"
	CallEnded    CallStatus = "ended"
	CallMissed   CallStatus = "missed"
	CallDeclined CallStatus = "declined"
)

// CallSession is the signaling record for a WebRTC call. Media never
// touches the server; the session only brokers peer IDs and billing.
type CallSession struct {
	ID           string     `bson:"id" json:"id"`
	CallerID     string     `bson:"callerId" json:"callerId"`
	CalleeID     string     `bson:"calleeId" json:"calleeId"`
	CallerPeerID string     `bson:"callerPeerId,omitempty" json:"callerPeerId,omitempty"`
	CalleePeerID string     `bson:"calleePeerId,omitempty" json:"calleePeerId,omitempty"`
	Video        bool       `bson:"video" json:"video"`
	Status       CallStatus `bson:"status" json:"status"`
	Billable     bool       `bson:"billable" json:"billable"`
	RatePerMin   float64    `bson:"ratePerMin,omitempty" json:"ratePerMin,omitempty"`
	StartedAt    time.Time  `bson:"startedAt" json:"startedAt"` // ring start
	AcceptedAt   *time.Time `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
	EndedAt      *time.Time `bson:"endedAt,omitempty" json:"endedAt,omitempty"`
	Charged      float64    `bson:"charged" json:"charged"`
}

// Duration returns the billed talk time, zero before accept.
func (c *CallSession) Duration() time.Duration {
	if c.AcceptedAt == nil || c.EndedAt == nil {
		return 0
	}
	return c.EndedAt.Sub(*c.AcceptedAt)
}

// CallInitiateInput starts a call toward a model or customer.
type CallInitiateInput struct {
	CalleeID string `json:"calleeId" binding:"required"`
	PeerID   string `json:"peerId" binding:"required"`
	Video    bool   `json:"video"`
}
