package services

import (
	"sync"

	"signal-bot-backend/internal/models"
)

// UserStore is what the core needs from the user registry.
type UserStore interface {
	UpsertUser(id int64, username string) error
	LinkPlatformUID(id int64, uid string) error
	SetApproval(id int64, approved bool) error
	IsApproved(id int64) bool
	GetUser(id int64) (*models.User, error)
	ListUsers() ([]models.User, error)
}

// StreakStore is what the core needs from the streak tracker.
type StreakStore interface {
	RecordOutcome(id int64, win bool) (winStreak, lossStreak int, err error)
	CurrentStreaks(id int64) (lossStreak, winStreak int, err error)
	RecordIssuedSignal(id int64, snapshot string) error
	GetStreakState(id int64) (*models.StreakState, error)
}

// SettingsStore is the operator-tunable key-value store.
type SettingsStore interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

// Deliverer pushes a text message to one user. Implemented by the
// Telegram transport.
type Deliverer interface {
	Deliver(userID int64, text string) error
}

// SignalSink receives every issued signal, e.g. for the owner's live
// feed. May be nil.
type SignalSink interface {
	PublishSignal(userID int64, sig models.Signal)
}

// broadcastWorkers bounds the fan-out so one slow recipient never
// blocks the rest and a large user base doesn't spawn a goroutine per
// row.
const broadcastWorkers = 8

// Core wires the registry, streak tracker, engine and access policy
// into the command surface the transports call.
type Core struct {
	users     UserStore
	streaks   StreakStore
	settings  SettingsStore
	policy    *AccessPolicy
	deliverer Deliverer
	sink      SignalSink
}

func NewCore(users UserStore, streaks StreakStore, settings SettingsStore, policy *AccessPolicy, deliverer Deliverer) *Core {
	return &Core{
		users:     users,
		streaks:   streaks,
		settings:  settings,
		policy:    policy,
		deliverer: deliverer,
	}
}

// SetSignalSink attaches a live feed consumer.
func (c *Core) SetSignalSink(sink SignalSink) {
	c.sink = sink
}

// OnStart registers first contact and returns the referral link for the
// welcome message. Calling it again only refreshes the username.
func (c *Core) OnStart(userID int64, username string) (string, error) {
	if err := c.users.UpsertUser(userID, username); err != nil {
		return "", err
	}
	return c.settings.GetSetting(SettingRefLink)
}

// OnRegister links the submitted platform UID to the user.
func (c *Core) OnRegister(userID int64, platformUID string) error {
	if platformUID == "" {
		return ErrInvalidInput
	}
	return c.users.LinkPlatformUID(userID, platformUID)
}

// OnSignalRequest runs the access gate, computes a signal adapted to
// the caller's loss streak and snapshots it as their last signal. The
// engine is never reached for unapproved users.
func (c *Core) OnSignalRequest(userID int64, period, recents string) (models.Signal, error) {
	if err := c.policy.AllowSignal(userID); err != nil {
		return models.Signal{}, err
	}

	lossStreak, _, err := c.streaks.CurrentStreaks(userID)
	if err != nil {
		return models.Signal{}, err
	}

	sig := ComputeSignal(period, recents, lossStreak)

	if err := c.streaks.RecordIssuedSignal(userID, sig.Format()); err != nil {
		return models.Signal{}, err
	}

	if c.sink != nil {
		c.sink.PublishSignal(userID, sig)
	}

	return sig, nil
}

// OnResult records a win/loss and returns the post-update
// (lossStreak, winStreak) counters.
func (c *Core) OnResult(userID int64, win bool) (int, int, error) {
	if err := c.policy.AllowSignal(userID); err != nil {
		return 0, 0, err
	}

	winStreak, lossStreak, err := c.streaks.RecordOutcome(userID, win)
	if err != nil {
		return 0, 0, err
	}
	return lossStreak, winStreak, nil
}

// OnMyStatus reports approval state, streaks and the last issued
// signal. Open to any known user.
func (c *Core) OnMyStatus(userID int64) (*models.UserStatus, error) {
	user, err := c.users.GetUser(userID)
	if err != nil {
		return nil, err
	}

	state, err := c.streaks.GetStreakState(userID)
	if err != nil {
		return nil, err
	}

	return &models.UserStatus{
		Approved:   user.Approved,
		WinStreak:  state.WinStreak,
		LossStreak: state.LossStreak,
		LastSignal: state.LastSignal,
	}, nil
}

func (c *Core) OnApprove(callerID, targetID int64) error {
	if err := c.policy.AllowAdmin(callerID); err != nil {
		return err
	}
	return c.users.SetApproval(targetID, true)
}

func (c *Core) OnReject(callerID, targetID int64) error {
	if err := c.policy.AllowAdmin(callerID); err != nil {
		return err
	}
	return c.users.SetApproval(targetID, false)
}

func (c *Core) OnListUsers(callerID int64) ([]models.User, error) {
	if err := c.policy.AllowAdmin(callerID); err != nil {
		return nil, err
	}
	return c.users.ListUsers()
}

// OnBroadcast delivers text to every known user. Deliveries run on a
// bounded worker pool; a failed recipient lands in the report and the
// loop moves on. No per-user state lock is held while a send is in
// flight.
func (c *Core) OnBroadcast(callerID int64, text string) (models.DeliveryReport, error) {
	report := models.DeliveryReport{ID: models.GenerateBroadcastID()}

	if err := c.policy.AllowAdmin(callerID); err != nil {
		return report, err
	}
	if text == "" {
		return report, ErrInvalidInput
	}

	users, err := c.users.ListUsers()
	if err != nil {
		return report, err
	}
	report.Total = len(users)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, broadcastWorkers)
	)

	for _, u := range users {
		wg.Add(1)
		sem <- struct{}{}
		go func(id int64) {
			defer wg.Done()
			defer func() { <-sem }()

			err := c.deliverer.Deliver(id, text)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failures = append(report.Failures, models.DeliveryFailure{
					UserID: id,
					Reason: err.Error(),
				})
				return
			}
			report.Delivered++
		}(u.ID)
	}
	wg.Wait()

	return report, nil
}

// OnSetReferral updates the referral link handed out by /start.
func (c *Core) OnSetReferral(callerID int64, value string) error {
	if err := c.policy.AllowAdmin(callerID); err != nil {
		return err
	}
	if value == "" {
		return ErrInvalidInput
	}
	return c.settings.SetSetting(SettingRefLink, value)
}

// IsOwner exposes the ownership check to the transports.
func (c *Core) IsOwner(id int64) bool {
	return c.policy.IsOwner(id)
}
