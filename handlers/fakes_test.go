package handlers

import (
	"context"
	"sync"

	"github.com/algorand/go-algorand-sdk/v2/types"

	"algogate-backend/ledger"
	"algogate-backend/models"
	"algogate-backend/queue"
	"algogate-backend/store"
)

// fakeStore is an in-memory Store whose InsertCheckIn enforces the
// (event, wallet) uniqueness constraint atomically, mirroring the database
// constraint the Postgres implementation relies on.
type fakeStore struct {
	mu       sync.Mutex
	events   map[string]models.Event
	checkIns map[string]models.CheckIn
	tickets  []models.Ticket
	users    map[string]models.User
	err      error // forced error for all operations when set
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:   make(map[string]models.Event),
		checkIns: make(map[string]models.CheckIn),
		users:    make(map[string]models.User),
	}
}

func checkInKey(eventID, walletAddress string) string {
	return eventID + "|" + walletAddress
}

func (f *fakeStore) SelectEvent(ctx context.Context, eventID string) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	event, ok := f.events[eventID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &event, nil
}

func (f *fakeStore) ListEvents(ctx context.Context) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	events := make([]models.Event, 0, len(f.events))
	for _, event := range f.events {
		events = append(events, event)
	}
	return events, nil
}

func (f *fakeStore) InsertEvent(ctx context.Context, event *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events[event.EventID] = *event
	return nil
}

func (f *fakeStore) UpdateEventAsset(ctx context.Context, eventID string, assetID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	event, ok := f.events[eventID]
	if !ok {
		return store.ErrNotFound
	}
	event.AssetID = assetID
	f.events[eventID] = event
	return nil
}

func (f *fakeStore) InsertCheckIn(ctx context.Context, checkIn *models.CheckIn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	key := checkInKey(checkIn.EventID, checkIn.WalletAddress)
	if _, exists := f.checkIns[key]; exists {
		return store.ErrDuplicateCheckIn
	}
	f.checkIns[key] = *checkIn
	return nil
}

func (f *fakeStore) SelectCheckIn(ctx context.Context, eventID, walletAddress string) (*models.CheckIn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	checkIn, ok := f.checkIns[checkInKey(eventID, walletAddress)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &checkIn, nil
}

func (f *fakeStore) ListCheckIns(ctx context.Context, eventID string) ([]models.CheckIn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var checkIns []models.CheckIn
	for _, checkIn := range f.checkIns {
		if checkIn.EventID == eventID {
			checkIns = append(checkIns, checkIn)
		}
	}
	return checkIns, nil
}

func (f *fakeStore) InsertTicket(ctx context.Context, ticket *models.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.tickets = append(f.tickets, *ticket)
	return nil
}

func (f *fakeStore) SelectUser(ctx context.Context, walletAddress string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[walletAddress]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &user, nil
}

func (f *fakeStore) UpsertUser(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.users[user.WalletAddress] = *user
	return nil
}

func (f *fakeStore) checkInCount(eventID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, checkIn := range f.checkIns {
		if checkIn.EventID == eventID {
			n++
		}
	}
	return n
}

// fakeOracle serves holdings from a map and can simulate an outage.
type fakeOracle struct {
	mu       sync.Mutex
	holdings map[string]map[uint64]uint64 // wallet -> asset -> amount
	err      error
	params   types.SuggestedParams
}

func newFakeOracle() *fakeOracle {
	gh := make([]byte, 32)
	gh[0] = 0x4c
	return &fakeOracle{
		holdings: make(map[string]map[uint64]uint64),
		params: types.SuggestedParams{
			Fee:             1000,
			FlatFee:         true,
			GenesisID:       "testnet-v1.0",
			GenesisHash:     gh,
			FirstRoundValid: 1000,
			LastRoundValid:  2000,
		},
	}
}

func (f *fakeOracle) setHolding(wallet string, assetID, amount uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.holdings[wallet] == nil {
		f.holdings[wallet] = make(map[uint64]uint64)
	}
	f.holdings[wallet][assetID] = amount
}

func (f *fakeOracle) SuggestedParams(ctx context.Context) (types.SuggestedParams, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return types.SuggestedParams{}, f.err
	}
	return f.params, nil
}

func (f *fakeOracle) HoldsAsset(ctx context.Context, walletAddress string, assetID uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return f.holdings[walletAddress][assetID] > 0, nil
}

func (f *fakeOracle) ListHoldings(ctx context.Context, walletAddress string) ([]ledger.Holding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var holdings []ledger.Holding
	for assetID, amount := range f.holdings[walletAddress] {
		if amount > 0 {
			holdings = append(holdings, ledger.Holding{AssetID: assetID, Amount: amount})
		}
	}
	return holdings, nil
}

func (f *fakeOracle) SubmitGroup(ctx context.Context, signedTxns [][]byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return "FAKETXID", nil
}

// recordingPublisher captures published check-in events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.CheckInEvent
}

func (p *recordingPublisher) PublishCheckIn(ctx context.Context, event queue.CheckInEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}
