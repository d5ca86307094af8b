package campaign

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrCampaignNotFound is returned when a step references a campaign
	// with no persisted snapshot and no initial state to start from.
	ErrCampaignNotFound = errors.New("campaign: not found")
	// ErrMissingQuery signals an initial state without search criteria.
	ErrMissingQuery = errors.New("campaign: query required")
)

// nodeID names one state in the workflow graph.
type nodeID string

const (
	nodePlanner     nodeID = "planner"
	nodeResearch    nodeID = "research"
	nodeQualifier   nodeID = "qualifier"
	nodeWriter      nodeID = "writer"
	nodeSendGate    nodeID = "send_approval"
	nodeSender      nodeID = "sender"
	nodeMonitor     nodeID = "monitor"
	nodeMeetingGate nodeID = "meeting_approval"
	nodeFollowup    nodeID = "followup"
	nodeMeeting     nodeID = "meeting"
	nodeEnd         nodeID = "end"
)

type handlerFunc func(ctx context.Context, st *CampaignState) error

// routerFunc picks the next node after its handler ran. Gate routers may
// consume a recorded rejection; everything else treats the snapshot as
// read-only.
type routerFunc func(st *CampaignState) nodeID

// transition is one edge declaration: either a static next node or a
// router with its declared range of targets.
type transition struct {
	next    nodeID
	route   routerFunc
	targets []nodeID
}

// InitParams is the full initial state accepted on a campaign's first
// step. Leads and Qualification may be pre-seeded together with
// StartFromWriter to resume a campaign directly at drafting.
type InitParams struct {
	Query           string
	SenderProfile   SenderProfile
	Source          string
	StartFromWriter bool
	Leads           []Lead
	Qualification   []Qualification
}

// StepInput carries new external input into one engine step. The zero
// value means "no new input", which every suspension point must treat as
// a no-op.
type StepInput struct {
	Init     *InitParams
	Decision HumanDecision
}

// Engine drives the campaign workflow graph for one campaign at a time,
// persisting the snapshot after every node.
type Engine struct {
	store       Store
	collab      Collaborators
	cfg         Config
	qualifier   *Qualifier
	handlers    map[nodeID]handlerFunc
	transitions map[nodeID]transition
	now         func() time.Time
}

// NewEngine wires the workflow graph and validates it: every node needs
// a handler and an outgoing edge, and every edge target must exist.
func NewEngine(store Store, collab Collaborators, cfg Config) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("campaign: store required")
	}
	if err := validateCollaborators(collab); err != nil {
		return nil, err
	}

	cfg = cfg.withDefaults()
	e := &Engine{
		store:     store,
		collab:    collab,
		cfg:       cfg,
		qualifier: NewQualifier(cfg),
		now:       time.Now,
	}

	e.handlers = map[nodeID]handlerFunc{
		nodePlanner:     e.plannerNode,
		nodeResearch:    e.researchNode,
		nodeQualifier:   e.qualifierNode,
		nodeWriter:      e.writerNode,
		nodeSendGate:    e.sendGateNode,
		nodeSender:      e.senderNode,
		nodeMonitor:     e.monitorNode,
		nodeMeetingGate: e.meetingGateNode,
		nodeFollowup:    e.followupNode,
		nodeMeeting:     e.meetingNode,
	}
	e.transitions = map[nodeID]transition{
		nodePlanner:     {next: nodeResearch},
		nodeResearch:    {next: nodeQualifier},
		nodeQualifier:   {route: e.qualifierRouter, targets: []nodeID{nodeWriter, nodeEnd}},
		nodeWriter:      {next: nodeSendGate},
		nodeSendGate:    {route: e.sendGateRouter, targets: []nodeID{nodeSender, nodeEnd}},
		nodeSender:      {next: nodeMonitor},
		nodeMonitor:     {route: e.monitorRouter, targets: []nodeID{nodeMeetingGate, nodeFollowup, nodeEnd}},
		nodeMeetingGate: {route: e.meetingGateRouter, targets: []nodeID{nodeMeeting, nodeMonitor, nodeEnd}},
		nodeFollowup:    {next: nodeMonitor},
		nodeMeeting:     {next: nodeMonitor},
	}

	if err := e.validateGraph(); err != nil {
		return nil, err
	}
	return e, nil
}

// WithClock overrides the engine's time source; used by tests to drive
// follow-up and expiry thresholds.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Config exposes the effective (defaulted) configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

func validateCollaborators(c Collaborators) error {
	missing := ""
	switch {
	case c.Discovery == nil:
		missing = "discovery"
	case c.Sites == nil:
		missing = "site reader"
	case c.Contacts == nil:
		missing = "contact extractor"
	case c.Analyst == nil:
		missing = "analyst"
	case c.Drafter == nil:
		missing = "drafter"
	case c.Mailer == nil:
		missing = "mailer"
	case c.Replies == nil:
		missing = "reply checker"
	case c.Scheduler == nil:
		missing = "scheduler"
	}
	if missing != "" {
		return fmt.Errorf("campaign: %s collaborator required", missing)
	}
	return nil
}

func (e *Engine) validateGraph() error {
	exists := func(n nodeID) bool {
		if n == nodeEnd {
			return true
		}
		_, ok := e.handlers[n]
		return ok
	}

	reachable := map[nodeID]bool{nodePlanner: true}
	queue := []nodeID{nodePlanner}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == nodeEnd {
			continue
		}
		tr, ok := e.transitions[n]
		if !ok {
			return fmt.Errorf("campaign: node %s has no outgoing edge", n)
		}
		var outs []nodeID
		switch {
		case tr.route != nil:
			if len(tr.targets) == 0 {
				return fmt.Errorf("campaign: router at %s declares no targets", n)
			}
			outs = tr.targets
		case tr.next != "":
			outs = []nodeID{tr.next}
		default:
			return fmt.Errorf("campaign: node %s has an empty transition", n)
		}
		for _, out := range outs {
			if !exists(out) {
				return fmt.Errorf("campaign: edge %s -> %s targets an unknown node", n, out)
			}
			if !reachable[out] {
				reachable[out] = true
				queue = append(queue, out)
			}
		}
	}

	for n := range e.handlers {
		if !reachable[n] {
			return fmt.Errorf("campaign: node %s is unreachable", n)
		}
	}
	return nil
}

// next resolves the outgoing edge for a node and asserts router output
// stays within its declared range.
func (e *Engine) next(n nodeID, st *CampaignState) (nodeID, error) {
	tr := e.transitions[n]
	if tr.route == nil {
		return tr.next, nil
	}
	out := tr.route(st)
	for _, t := range tr.targets {
		if t == out {
			return out, nil
		}
	}
	return nodeEnd, fmt.Errorf("campaign: router at %s returned undeclared target %s", n, out)
}

// Step loads (or initializes) the campaign snapshot, merges new input,
// and walks the workflow graph until a suspension or terminal point,
// persisting after every node. Re-invoking at a suspension point with no
// new input reproduces the same snapshot without side effects.
func (e *Engine) Step(ctx context.Context, campaignID string, input StepInput) (CampaignState, error) {
	if campaignID == "" {
		return CampaignState{}, fmt.Errorf("campaign: campaign id required")
	}

	lease, err := e.store.Acquire(ctx, campaignID)
	if err != nil {
		return CampaignState{}, fmt.Errorf("campaign: acquire %s: %w", campaignID, err)
	}
	defer lease.Release(ctx)

	var st CampaignState
	snap, ok := lease.Snapshot()
	switch {
	case ok:
		st = snap.Clone()
	case input.Init != nil:
		st, err = newState(*input.Init)
		if err != nil {
			return CampaignState{}, err
		}
	default:
		return CampaignState{}, ErrCampaignNotFound
	}

	mergeDecision(&st, input.Decision)

	node := nodePlanner
	for node != nodeEnd {
		if err := e.handlers[node](ctx, &st); err != nil {
			// The snapshot persisted after the previous node is still
			// authoritative; the failed node retries on the next step.
			return st, err
		}
		if err := lease.Save(ctx, st); err != nil {
			return st, fmt.Errorf("campaign: persist after %s: %w", node, err)
		}
		node, err = e.next(node, &st)
		if err != nil {
			return st, err
		}
	}

	return st, nil
}

func newState(init InitParams) (CampaignState, error) {
	if init.Query == "" && !init.StartFromWriter {
		return CampaignState{}, ErrMissingQuery
	}
	source := init.Source
	if source == "" {
		source = "unknown"
	}
	return CampaignState{
		Query:           init.Query,
		Leads:           init.Leads,
		Qualification:   init.Qualification,
		Phase:           PhaseCampaign,
		Source:          source,
		StartFromWriter: init.StartFromWriter,
		SenderProfile:   init.SenderProfile,
	}, nil
}

func mergeDecision(st *CampaignState, d HumanDecision) {
	if d.SendFirstEmail != "" {
		st.HumanDecision.SendFirstEmail = d.SendFirstEmail
	}
	if d.SendMeetingEmail != "" {
		st.HumanDecision.SendMeetingEmail = d.SendMeetingEmail
	}
	if d.MeetingAt != nil {
		at := *d.MeetingAt
		st.HumanDecision.MeetingAt = &at
	}
}
