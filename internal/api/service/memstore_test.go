package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"libraryhub/internal/api/models"
	"libraryhub/internal/api/repository"
)

// memStore is an in-memory backend for the repository interfaces. The
// coordinator built on it serializes units of work with a mutex and restores
// a snapshot on error, which gives tests the same commit-or-rollback and
// isolation semantics the real coordinator provides, minus the database.
//
// Repository methods themselves do not lock: outside a unit of work the
// tests are sequential, and inside one the coordinator already holds the
// mutex.
type memStore struct {
	mu sync.Mutex

	users        map[string]*models.User
	books        map[int64]*models.Book
	policies     map[int64]*models.Policy // keyed by library id
	loans        map[int64]*models.BorrowTransaction
	reservations map[int64]*models.Reservation
	fines        map[int64]*models.Fine
	memberships  map[string]*models.UserBookMembership
	libraries    map[int64]*models.Library

	nextID int64
}

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[string]*models.User),
		books:        make(map[int64]*models.Book),
		policies:     make(map[int64]*models.Policy),
		loans:        make(map[int64]*models.BorrowTransaction),
		reservations: make(map[int64]*models.Reservation),
		fines:        make(map[int64]*models.Fine),
		memberships:  make(map[string]*models.UserBookMembership),
		libraries:    make(map[int64]*models.Library),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func membershipKey(userID string, bookID int64, kind string) string {
	return fmt.Sprintf("%s|%d|%s", userID, bookID, kind)
}

type memSnapshot struct {
	users        map[string]*models.User
	books        map[int64]*models.Book
	policies     map[int64]*models.Policy
	loans        map[int64]*models.BorrowTransaction
	reservations map[int64]*models.Reservation
	fines        map[int64]*models.Fine
	memberships  map[string]*models.UserBookMembership
	nextID       int64
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		users:        make(map[string]*models.User, len(s.users)),
		books:        make(map[int64]*models.Book, len(s.books)),
		policies:     make(map[int64]*models.Policy, len(s.policies)),
		loans:        make(map[int64]*models.BorrowTransaction, len(s.loans)),
		reservations: make(map[int64]*models.Reservation, len(s.reservations)),
		fines:        make(map[int64]*models.Fine, len(s.fines)),
		memberships:  make(map[string]*models.UserBookMembership, len(s.memberships)),
		nextID:       s.nextID,
	}
	for k, v := range s.users {
		u := *v
		snap.users[k] = &u
	}
	for k, v := range s.books {
		b := *v
		snap.books[k] = &b
	}
	for k, v := range s.policies {
		p := *v
		snap.policies[k] = &p
	}
	for k, v := range s.loans {
		l := *v
		snap.loans[k] = &l
	}
	for k, v := range s.reservations {
		r := *v
		snap.reservations[k] = &r
	}
	for k, v := range s.fines {
		f := *v
		snap.fines[k] = &f
	}
	for k, v := range s.memberships {
		m := *v
		snap.memberships[k] = &m
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.users = snap.users
	s.books = snap.books
	s.policies = snap.policies
	s.loans = snap.loans
	s.reservations = snap.reservations
	s.fines = snap.fines
	s.memberships = snap.memberships
	s.nextID = snap.nextID
}

// memCoordinator runs units of work one at a time and rolls the store back
// when the function fails.
type memCoordinator struct {
	store *memStore
}

func (c *memCoordinator) Execute(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	snap := c.store.snapshot()
	if err := fn(memUOW{store: c.store}); err != nil {
		c.store.restore(snap)
		return err
	}
	return nil
}

type memUOW struct {
	store *memStore
}

func (u memUOW) Users() repository.UserRepository               { return memUsers{u.store} }
func (u memUOW) Books() repository.BookRepository               { return memBooks{u.store} }
func (u memUOW) Policies() repository.PolicyRepository          { return memPolicies{u.store} }
func (u memUOW) Loans() repository.LoanRepository               { return memLoans{u.store} }
func (u memUOW) Reservations() repository.ReservationRepository { return memReservations{u.store} }
func (u memUOW) Fines() repository.FineRepository               { return memFines{u.store} }
func (u memUOW) Memberships() repository.MembershipRepository   { return memMemberships{u.store} }
func (u memUOW) Ledger() repository.CopyLedger                  { return memLedger{u.store} }

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", r.s.id())
	}
	clone := *user
	r.s.users[user.ID] = &clone
	return nil
}

func (r memUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	user, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *user
	return &clone, nil
}

func (r memUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	for _, user := range r.s.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range r.s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memUsers) Update(_ context.Context, user *models.User) error {
	if _, ok := r.s.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *user
	r.s.users[user.ID] = &clone
	return nil
}

type memBooks struct{ s *memStore }

func (r memBooks) Create(_ context.Context, book *models.Book) error {
	if book.ID == 0 {
		book.ID = r.s.id()
	}
	clone := *book
	r.s.books[book.ID] = &clone
	return nil
}

func (r memBooks) GetByID(_ context.Context, id int64) (*models.Book, error) {
	book, ok := r.s.books[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *book
	return &clone, nil
}

func (r memBooks) GetForUpdate(ctx context.Context, id int64) (*models.Book, error) {
	return r.GetByID(ctx, id)
}

func (r memBooks) Update(_ context.Context, book *models.Book) error {
	existing, ok := r.s.books[book.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *book
	// Counters belong to the ledger; a plain update must not clobber them.
	clone.TotalCopies = existing.TotalCopies
	clone.AvailableCopies = existing.AvailableCopies
	clone.ReservedCopies = existing.ReservedCopies
	r.s.books[book.ID] = &clone
	return nil
}

func (r memBooks) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.books[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.books, id)
	return nil
}

func (r memBooks) List(_ context.Context, params repository.ListBooksParams) ([]models.Book, int64, error) {
	var matched []models.Book
	for _, book := range r.s.books {
		if params.LibraryID != nil && book.LibraryID != *params.LibraryID {
			continue
		}
		if params.Search != "" && !strings.Contains(strings.ToLower(book.Title), strings.ToLower(params.Search)) {
			continue
		}
		matched = append(matched, *book)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched, int64(len(matched)), nil
}

func (r memBooks) ReplaceGenres(_ context.Context, book *models.Book, genreIDs []int64) error {
	stored, ok := r.s.books[book.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Genres = nil
	for _, id := range genreIDs {
		stored.Genres = append(stored.Genres, models.Genre{ID: id})
	}
	return nil
}

type memPolicies struct{ s *memStore }

func (r memPolicies) GetByLibraryID(_ context.Context, libraryID int64) (*models.Policy, error) {
	policy, ok := r.s.policies[libraryID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *policy
	return &clone, nil
}

func (r memPolicies) Upsert(_ context.Context, policy *models.Policy) error {
	clone := *policy
	r.s.policies[policy.LibraryID] = &clone
	return nil
}

type memLoans struct{ s *memStore }

func (r memLoans) Create(_ context.Context, loan *models.BorrowTransaction) error {
	if loan.ID == 0 {
		loan.ID = r.s.id()
	}
	clone := *loan
	r.s.loans[loan.ID] = &clone
	return nil
}

func (r memLoans) GetByID(_ context.Context, id int64) (*models.BorrowTransaction, error) {
	loan, ok := r.s.loans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *loan
	return &clone, nil
}

func (r memLoans) Update(_ context.Context, loan *models.BorrowTransaction) error {
	if _, ok := r.s.loans[loan.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *loan
	r.s.loans[loan.ID] = &clone
	return nil
}

func (r memLoans) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.loans[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.loans, id)
	return nil
}

func (r memLoans) HasOpenLoan(_ context.Context, userID string, bookID int64) (bool, error) {
	for _, loan := range r.s.loans {
		if loan.UserID == userID && loan.BookID == bookID && loan.Open() {
			return true, nil
		}
	}
	return false, nil
}

func (r memLoans) CountOpenByUser(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, loan := range r.s.loans {
		if loan.UserID == userID && loan.Open() {
			count++
		}
	}
	return count, nil
}

func (r memLoans) List(_ context.Context, params repository.ListLoansParams) ([]models.BorrowTransaction, int64, error) {
	var matched []models.BorrowTransaction
	for _, loan := range r.s.loans {
		if params.UserID != "" && loan.UserID != params.UserID {
			continue
		}
		if params.BookID != nil && loan.BookID != *params.BookID {
			continue
		}
		if params.Status != "" && loan.Status != params.Status {
			continue
		}
		matched = append(matched, *loan)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched, int64(len(matched)), nil
}

type memReservations struct{ s *memStore }

func (r memReservations) Create(_ context.Context, reservation *models.Reservation) error {
	if reservation.ID == 0 {
		reservation.ID = r.s.id()
	}
	clone := *reservation
	r.s.reservations[reservation.ID] = &clone
	return nil
}

func (r memReservations) GetByID(_ context.Context, id int64) (*models.Reservation, error) {
	reservation, ok := r.s.reservations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *reservation
	return &clone, nil
}

func (r memReservations) FindByUserAndBook(_ context.Context, userID string, bookID int64) (*models.Reservation, error) {
	for _, reservation := range r.s.reservations {
		if reservation.UserID == userID && reservation.BookID == bookID {
			clone := *reservation
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memReservations) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.reservations[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.reservations, id)
	return nil
}

func (r memReservations) List(_ context.Context, params repository.ListReservationsParams) ([]models.Reservation, int64, error) {
	var matched []models.Reservation
	for _, reservation := range r.s.reservations {
		if params.UserID != "" && reservation.UserID != params.UserID {
			continue
		}
		if params.BookID != nil && reservation.BookID != *params.BookID {
			continue
		}
		if params.ExpiredOnly && !reservation.Expired(params.Now) {
			continue
		}
		matched = append(matched, *reservation)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched, int64(len(matched)), nil
}

func (r memReservations) ListExpiredIDs(_ context.Context, now time.Time, limit int) ([]int64, error) {
	var ids []int64
	for _, reservation := range r.s.reservations {
		if reservation.Expired(now) {
			ids = append(ids, reservation.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

type memFines struct{ s *memStore }

func (r memFines) Create(_ context.Context, fine *models.Fine) error {
	for _, existing := range r.s.fines {
		if existing.BorrowID == fine.BorrowID {
			return fmt.Errorf("duplicate fine for loan %d", fine.BorrowID)
		}
	}
	if fine.ID == 0 {
		fine.ID = r.s.id()
	}
	clone := *fine
	r.s.fines[fine.ID] = &clone
	return nil
}

func (r memFines) GetByID(_ context.Context, id int64) (*models.Fine, error) {
	fine, ok := r.s.fines[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *fine
	return &clone, nil
}

func (r memFines) GetByBorrowID(_ context.Context, borrowID int64) (*models.Fine, error) {
	for _, fine := range r.s.fines {
		if fine.BorrowID == borrowID {
			clone := *fine
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memFines) Update(_ context.Context, fine *models.Fine) error {
	if _, ok := r.s.fines[fine.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *fine
	r.s.fines[fine.ID] = &clone
	return nil
}

func (r memFines) List(_ context.Context, params repository.ListFinesParams) ([]models.Fine, int64, error) {
	var matched []models.Fine
	for _, fine := range r.s.fines {
		if params.UserID != "" && fine.UserID != params.UserID {
			continue
		}
		if params.Paid != nil && fine.IsPaid != *params.Paid {
			continue
		}
		matched = append(matched, *fine)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched, int64(len(matched)), nil
}

type memMemberships struct{ s *memStore }

func (r memMemberships) Add(_ context.Context, userID string, bookID int64, kind string) error {
	key := membershipKey(userID, bookID, kind)
	if _, ok := r.s.memberships[key]; ok {
		return fmt.Errorf("duplicate membership %s", key)
	}
	r.s.memberships[key] = &models.UserBookMembership{
		ID:      r.s.id(),
		UserID:  userID,
		BookID:  bookID,
		Kind:    kind,
		AddedAt: time.Now(),
	}
	return nil
}

func (r memMemberships) Remove(_ context.Context, userID string, bookID int64, kind string) error {
	key := membershipKey(userID, bookID, kind)
	if _, ok := r.s.memberships[key]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.memberships, key)
	return nil
}

func (r memMemberships) Exists(_ context.Context, userID string, bookID int64, kind string) (bool, error) {
	_, ok := r.s.memberships[membershipKey(userID, bookID, kind)]
	return ok, nil
}

func (r memMemberships) ListBookIDs(_ context.Context, userID string, kind string) ([]int64, error) {
	var ids []int64
	for _, m := range r.s.memberships {
		if m.UserID == userID && m.Kind == kind {
			ids = append(ids, m.BookID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r memMemberships) ListWithBooks(_ context.Context, userID string, kind string) ([]models.UserBookMembership, error) {
	var entries []models.UserBookMembership
	for _, m := range r.s.memberships {
		if m.UserID == userID && m.Kind == kind {
			entry := *m
			if book, ok := r.s.books[m.BookID]; ok {
				clone := *book
				entry.Book = &clone
			}
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

// memLibraries backs the catalog-facing services; libraries never take part
// in a unit of work, so the snapshot machinery skips them.
type memLibraries struct{ s *memStore }

func (r memLibraries) Create(_ context.Context, library *models.Library) error {
	if library.ID == 0 {
		library.ID = r.s.id()
	}
	clone := *library
	r.s.libraries[library.ID] = &clone
	return nil
}

func (r memLibraries) GetByID(_ context.Context, id int64) (*models.Library, error) {
	library, ok := r.s.libraries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *library
	return &clone, nil
}

func (r memLibraries) List(_ context.Context, page, pageSize int) ([]models.Library, int64, error) {
	var all []models.Library
	for _, library := range r.s.libraries {
		all = append(all, *library)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, int64(len(all)), nil
}

func (r memLibraries) Update(_ context.Context, library *models.Library) error {
	if _, ok := r.s.libraries[library.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *library
	r.s.libraries[library.ID] = &clone
	return nil
}

func (r memLibraries) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.libraries[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.libraries, id)
	return nil
}

type memLedger struct{ s *memStore }

func (l memLedger) apply(bookID int64, deltaAvailable, deltaReserved int) error {
	book, ok := l.s.books[bookID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	book.AvailableCopies += deltaAvailable
	book.ReservedCopies += deltaReserved
	if !book.CountersValid() {
		return fmt.Errorf("%w: book %d would reach available=%d reserved=%d total=%d",
			repository.ErrInvariantViolation, bookID, book.AvailableCopies, book.ReservedCopies, book.TotalCopies)
	}
	return nil
}

func (l memLedger) DecrementAvailable(_ context.Context, bookID int64) error {
	return l.apply(bookID, -1, 0)
}

func (l memLedger) IncrementAvailable(_ context.Context, bookID int64) error {
	return l.apply(bookID, +1, 0)
}

func (l memLedger) DecrementReserved(_ context.Context, bookID int64) error {
	return l.apply(bookID, 0, -1)
}

func (l memLedger) IncrementReserved(_ context.Context, bookID int64) error {
	return l.apply(bookID, 0, +1)
}

func (l memLedger) SetTotalCopies(_ context.Context, bookID int64, total int) error {
	book, ok := l.s.books[bookID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	committed := book.TotalCopies - book.AvailableCopies
	book.TotalCopies = total
	book.AvailableCopies = total - committed
	if !book.CountersValid() {
		return fmt.Errorf("%w: book %d cannot shrink to total=%d below %d committed copies",
			repository.ErrInvariantViolation, bookID, total, committed)
	}
	return nil
}
