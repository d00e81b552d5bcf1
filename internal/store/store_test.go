package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptic-server/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db)
}

func TestUserRoundTrip(t *testing.T) {
	s := newTestStore(t)

	u, err := s.CreateUser("alice", "hash")
	require.NoError(t, err)
	require.NotEmpty(t, u.UUID)

	byName, err := s.GetUserByName("alice")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, u.UUID, byName.UUID)

	missing, err := s.GetUserByName("bob")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSessionInvalidation(t *testing.T) {
	s := newTestStore(t)

	u, err := s.CreateUser("alice", "hash")
	require.NoError(t, err)

	sess, err := s.CreateSession(u.UUID)
	require.NoError(t, err)

	got, err := s.GetSessionByToken(sess.Token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.UUID, got.User)

	require.NoError(t, s.InvalidateSession(sess.Token))

	got, err = s.GetSessionByToken(sess.Token)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSettingsUpsertAndDelete(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SetSetting("user-1", "lang", "en"))
	require.NoError(t, s.SetSetting("user-1", "lang", "de"))

	v, err := s.GetSetting("user-1", "lang")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "de", *v)

	deleted, err := s.DeleteSetting("user-1", "lang")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteSetting("user-1", "lang")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestWalletTransfer(t *testing.T) {
	s := newTestStore(t)

	src, err := s.CreateWallet("user-1")
	require.NoError(t, err)
	dst, err := s.CreateWallet("user-2")
	require.NoError(t, err)
	require.Len(t, src.Key, 10)

	require.NoError(t, s.CreditWallet(src.SourceUUID, 100))

	err = s.Transfer(src.SourceUUID, dst.SourceUUID, 40, "rent", 0)
	require.NoError(t, err)

	srcAfter, err := s.GetWallet(src.SourceUUID)
	require.NoError(t, err)
	dstAfter, err := s.GetWallet(dst.SourceUUID)
	require.NoError(t, err)
	assert.Equal(t, int64(60), srcAfter.Amount)
	assert.Equal(t, int64(40), dstAfter.Amount)

	txs, err := s.ListTransactions(src.SourceUUID, 10, 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "rent", txs[0].Usage)
}

func TestWalletTransferInsufficientFunds(t *testing.T) {
	s := newTestStore(t)

	src, err := s.CreateWallet("user-1")
	require.NoError(t, err)
	dst, err := s.CreateWallet("user-2")
	require.NoError(t, err)

	err = s.Transfer(src.SourceUUID, dst.SourceUUID, 1, "", 0)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// nothing moved, no ledger row
	n, err := s.CountTransactions(src.SourceUUID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWalletTransferUnknownWallet(t *testing.T) {
	s := newTestStore(t)

	src, err := s.CreateWallet("user-1")
	require.NoError(t, err)
	require.NoError(t, s.CreditWallet(src.SourceUUID, 100))

	err = s.Transfer(src.SourceUUID, "nope", 10, "", 0)
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.Transfer("nope", src.SourceUUID, 10, "", 0)
	assert.ErrorIs(t, err, ErrNotFound)

	after, err := s.GetWallet(src.SourceUUID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), after.Amount)
}

func TestPurchaseDebitsAndGrants(t *testing.T) {
	s := newTestStore(t)

	w, err := s.CreateWallet("user-1")
	require.NoError(t, err)
	require.NoError(t, s.CreditWallet(w.SourceUUID, 500))

	bought, err := s.Purchase(w.SourceUUID, "user-1", 300, []PurchaseItem{
		{Name: "CPU Cooler Plus", RelatedMS: "device", Count: 2},
	})
	require.NoError(t, err)
	require.Len(t, bought, 2)

	after, err := s.GetWallet(w.SourceUUID)
	require.NoError(t, err)
	assert.Equal(t, int64(200), after.Amount)

	inv, err := s.ListInventory("user-1")
	require.NoError(t, err)
	assert.Len(t, inv, 2)
}

func TestPurchaseRollsBackOnInsufficientFunds(t *testing.T) {
	s := newTestStore(t)

	w, err := s.CreateWallet("user-1")
	require.NoError(t, err)
	require.NoError(t, s.CreditWallet(w.SourceUUID, 10))

	_, err = s.Purchase(w.SourceUUID, "user-1", 300, []PurchaseItem{
		{Name: "CPU Cooler Plus", RelatedMS: "device", Count: 1},
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	inv, err := s.ListInventory("user-1")
	require.NoError(t, err)
	assert.Empty(t, inv)
}

func TestConsumeInventoryAllOrNothing(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.CreateInventoryElement(model.InventoryElement{
		ElementUUID: "el-1", ElementName: "CPU Cooler Plus", RelatedMS: "device", Owner: "user-1",
	}))

	err := s.ConsumeInventoryElements("user-1", []string{"CPU Cooler Plus", "Red Dog 3"})
	assert.ErrorIs(t, err, ErrNotFound)

	// the partially matched element survives
	inv, err := s.ListInventory("user-1")
	require.NoError(t, err)
	assert.Len(t, inv, 1)

	require.NoError(t, s.ConsumeInventoryElements("user-1", []string{"CPU Cooler Plus"}))
	inv, err = s.ListInventory("user-1")
	require.NoError(t, err)
	assert.Empty(t, inv)
}

func TestFileSubtreeDelete(t *testing.T) {
	s := newTestStore(t)

	dirUUID := "f-dir"
	subUUID := "f-sub"
	require.NoError(t, s.CreateFile(model.File{
		UUID: dirUUID, Device: "dev-1", Filename: "docs", IsDirectory: true,
	}))
	require.NoError(t, s.CreateFile(model.File{
		UUID: subUUID, Device: "dev-1", Filename: "inner", IsDirectory: true, ParentDirUUID: &dirUUID,
	}))
	require.NoError(t, s.CreateFile(model.File{
		UUID: "f-note", Device: "dev-1", Filename: "note.txt", Content: "hello", ParentDirUUID: &subUUID,
	}))

	require.NoError(t, s.DeleteFile("dev-1", dirUUID))

	all, err := s.ListFiles("dev-1", nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestIsAncestorDir(t *testing.T) {
	s := newTestStore(t)

	aUUID := "f-a"
	require.NoError(t, s.CreateFile(model.File{
		UUID: aUUID, Device: "dev-1", Filename: "a", IsDirectory: true,
	}))
	require.NoError(t, s.CreateFile(model.File{
		UUID: "f-b", Device: "dev-1", Filename: "b", IsDirectory: true, ParentDirUUID: &aUUID,
	}))

	ok, err := s.IsAncestorDir("dev-1", aUUID, "f-b")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.IsAncestorDir("dev-1", "f-b", aUUID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNetworkCreateAndCascadeDelete(t *testing.T) {
	s := newTestStore(t)

	n, err := s.CreateNetwork("lan", "dev-1", false)
	require.NoError(t, err)

	ok, err := s.IsNetworkMember(n.UUID, "dev-1")
	require.NoError(t, err)
	assert.True(t, ok, "owner joins on create")

	require.NoError(t, s.AddNetworkMember(n.UUID, "dev-2"))
	_, err = s.CreateInvitation(n.UUID, "dev-3", false)
	require.NoError(t, err)

	require.NoError(t, s.DeleteNetwork(n.UUID))

	members, err := s.ListNetworkMembers(n.UUID)
	require.NoError(t, err)
	assert.Empty(t, members)

	invs, err := s.ListInvitationsByNetwork(n.UUID, false)
	require.NoError(t, err)
	assert.Empty(t, invs)
}

func TestNetworkNameUnique(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateNetwork("lan", "dev-1", false)
	require.NoError(t, err)
	_, err = s.CreateNetwork("lan", "dev-2", true)
	assert.Error(t, err)
}

func TestServiceDeleteCascadesSpecialization(t *testing.T) {
	s := newTestStore(t)

	svc := model.Service{UUID: "svc-1", Device: "dev-1", Owner: "user-1", Name: "bruteforce"}
	require.NoError(t, s.CreateService(svc))
	require.NoError(t, s.CreateBruteforce(model.BruteforceAttack{UUID: "svc-1"}))

	require.NoError(t, s.DeleteService("svc-1"))

	got, err := s.GetService("dev-1", "svc-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	bf, err := s.GetBruteforce("svc-1")
	require.NoError(t, err)
	assert.Nil(t, bf)
}

func TestAnyRunningServiceNamed(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.CreateService(model.Service{
		UUID: "svc-1", Device: "dev-1", Owner: "user-1", Name: "ssh", Running: true, RunningPort: 22,
	}))

	ok, err := s.AnyRunningServiceNamed("dev-1", "ssh", "svc-2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.AnyRunningServiceNamed("dev-1", "ssh", "svc-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunningMinersSkipsUnboundWallets(t *testing.T) {
	s := newTestStore(t)

	wallet := "wallet-1"
	require.NoError(t, s.CreateService(model.Service{
		UUID: "m-1", Device: "dev-1", Owner: "user-1", Name: "miner", Running: true,
	}))
	require.NoError(t, s.CreateMiner(model.MinerState{UUID: "m-1", Wallet: &wallet, Power: 0.5}))

	require.NoError(t, s.CreateService(model.Service{
		UUID: "m-2", Device: "dev-1", Owner: "user-1", Name: "miner", Running: true,
	}))
	require.NoError(t, s.CreateMiner(model.MinerState{UUID: "m-2"}))

	miners, services, err := s.RunningMiners()
	require.NoError(t, err)
	require.Len(t, miners, 1)
	require.Len(t, services, 1)
	assert.Equal(t, "m-1", miners[0].UUID)
}

func TestDeviceDeleteCascade(t *testing.T) {
	s := newTestStore(t)

	d := model.Device{UUID: "dev-1", Name: "box", Owner: "user-1", PoweredOn: true, StarterDevice: true}
	require.NoError(t, s.CreateDevice(d))

	require.NoError(t, s.AddHardwareElement(model.HardwareElement{
		UUID: "hw-1", DeviceUUID: d.UUID, HardwareType: "cpu", HardwareElement: "Coral 8",
	}))
	require.NoError(t, s.SetWorkload(model.Workload{UUID: d.UUID, PerformanceCPU: 10}))
	require.NoError(t, s.CreateFile(model.File{
		UUID: "f-home", Device: d.UUID, Filename: "home", IsDirectory: true,
	}))
	require.NoError(t, s.CreateService(model.Service{
		UUID: "svc-1", Device: d.UUID, Owner: "user-1", Name: "ssh", RunningPort: 22,
	}))

	require.NoError(t, s.DeleteDevice(d.UUID))

	got, err := s.GetDevice(d.UUID)
	require.NoError(t, err)
	assert.Nil(t, got)

	svcs, err := s.ListServices(d.UUID)
	require.NoError(t, err)
	assert.Empty(t, svcs)

	files, err := s.ListFiles(d.UUID, nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}
