// Package ledger owns the persistent entities of the vault ledger and the
// atomic primitives that mutate them. The store is a mechanism, not a
// policy: credit and debit apply arithmetic without sufficiency checks, and
// callers compose them inside a storage transaction when several steps must
// be visible as one.
package ledger

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "vaultbook/internal/errors"
	"vaultbook/internal/models"
	"vaultbook/internal/pagination"
)

// Store provides access to users, vaults, transactions, categories, units,
// and loans. Exported methods canonicalize user and vault names exactly
// once at this boundary; internal helpers expect canonical names.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store backed by the given database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying database handle, for wrapping composed
// operations in a single storage transaction.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// TransactionRecord describes one row to append to the transaction log.
type TransactionRecord struct {
	Username    string
	Vault       string
	Type        models.TransactionType
	Amount      decimal.Decimal // signed: positive inflow, negative outflow
	Category    string          // optional; must exist when set
	Description string          // stored lower-cased
	Quantity    *float64
	Unit        string    // optional; must exist when set
	Date        time.Time // zero value defaults to now
}

// LoanSummary is one aggregated loan row between two users.
type LoanSummary struct {
	Lender   string          `json:"lender"`
	Borrower string          `json:"borrower"`
	Amount   decimal.Decimal `json:"amount"`
}

// CreateUser creates a user and, atomically, their Main vault. A user must
// never exist without a Main vault, so both inserts share one storage
// transaction. The credential is stored as given (hashing is the session
// layer's job); nil marks a loan-only counterparty.
func (s *Store) CreateUser(name string, credential *string) (*models.User, error) {
	canonical := models.CanonicalName(name)
	if canonical == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "username is required")
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ?", canonical).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateUser
	}

	user := &models.User{
		Username: canonical,
		Password: credential,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		vault := &models.Vault{
			UserID:  user.ID,
			Name:    models.MainVaultName,
			Balance: decimal.Zero,
		}
		if err := tx.Create(vault).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// UserExists reports whether a user with the given name exists.
func (s *Store) UserExists(name string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ?", models.CanonicalName(name)).Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// FindUser retrieves a user by name.
func (s *Store) FindUser(name string) (*models.User, error) {
	return s.findUser(s.db, models.CanonicalName(name))
}

// ListUsernames returns every username, ordered alphabetically.
func (s *Store) ListUsernames() ([]string, error) {
	var names []string
	if err := s.db.Model(&models.User{}).Order("username").Pluck("username", &names).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return names, nil
}

// CreateVault creates a new, empty vault for an existing user.
func (s *Store) CreateVault(username, vaultName string) (*models.Vault, error) {
	canonicalVault := models.CanonicalName(vaultName)
	if canonicalVault == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "vault name is required")
	}

	user, err := s.findUser(s.db, models.CanonicalName(username))
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.Vault{}).Where("user_id = ? AND name = ?", user.ID, canonicalVault).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateVault
	}

	vault := &models.Vault{
		UserID:  user.ID,
		Name:    canonicalVault,
		Balance: decimal.Zero,
	}
	if err := s.db.Create(vault).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return vault, nil
}

// VaultExists reports whether the (user, vault) pair exists.
func (s *Store) VaultExists(username, vaultName string) (bool, error) {
	_, err := s.findVault(s.db, models.CanonicalName(username), models.CanonicalName(vaultName))
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && (appErr.Code == apperrors.ErrVaultNotFound.Code || appErr.Code == apperrors.ErrUserNotFound.Code) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// VaultBalance returns the balance of one vault. A missing vault is a
// VAULT_NOT_FOUND failure, never a zero balance: callers must be able to
// tell the two apart.
func (s *Store) VaultBalance(username, vaultName string) (decimal.Decimal, error) {
	return s.Balance(s.db, username, vaultName)
}

// Balance is the transaction-scoped variant of VaultBalance, for
// sufficiency checks that must share a storage transaction with the debit
// they guard.
func (s *Store) Balance(tx *gorm.DB, username, vaultName string) (decimal.Decimal, error) {
	vault, err := s.findVault(tx, models.CanonicalName(username), models.CanonicalName(vaultName))
	if err != nil {
		return decimal.Zero, err
	}
	return vault.Balance, nil
}

// VaultNames returns the names of all vaults owned by a user.
func (s *Store) VaultNames(username string) ([]string, error) {
	user, err := s.findUser(s.db, models.CanonicalName(username))
	if err != nil {
		return nil, err
	}
	var names []string
	if err := s.db.Model(&models.Vault{}).Where("user_id = ?", user.ID).Order("id").Pluck("name", &names).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return names, nil
}

// VaultBalances returns a snapshot of all vault balances for a user, keyed
// by canonical vault name. The bulk validator replays a batch against a
// copy of this snapshot instead of re-reading storage mid-batch.
func (s *Store) VaultBalances(username string) (map[string]decimal.Decimal, error) {
	user, err := s.findUser(s.db, models.CanonicalName(username))
	if err != nil {
		return nil, err
	}
	var vaults []models.Vault
	if err := s.db.Where("user_id = ?", user.ID).Find(&vaults).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	balances := make(map[string]decimal.Decimal, len(vaults))
	for _, v := range vaults {
		balances[v.Name] = v.Balance
	}
	return balances, nil
}

// TotalBalance returns the sum of all vault balances for a user.
func (s *Store) TotalBalance(username string) (decimal.Decimal, error) {
	balances, err := s.VaultBalances(username)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, balance := range balances {
		total = total.Add(balance)
	}
	return total, nil
}

// Credit adds amount (any sign) to a vault balance. No sufficiency check
// happens here; that is the transaction service's job. The arithmetic runs
// in Go on decimals so balances never drift, and the result is written back
// within the caller's storage transaction.
func (s *Store) Credit(tx *gorm.DB, username, vaultName string, amount decimal.Decimal) error {
	vault, err := s.findVault(tx, models.CanonicalName(username), models.CanonicalName(vaultName))
	if err != nil {
		return err
	}
	newBalance := vault.Balance.Add(amount)
	if err := tx.Model(vault).Update("balance", newBalance).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Debit subtracts amount from a vault balance, under the same
// no-policy contract as Credit.
func (s *Store) Debit(tx *gorm.DB, username, vaultName string, amount decimal.Decimal) error {
	return s.Credit(tx, username, vaultName, amount.Neg())
}

// RecordTransaction appends one row to the transaction log. Vault, category
// and unit names must resolve; the description is lower-cased before
// storage; a zero date defaults to now.
func (s *Store) RecordTransaction(tx *gorm.DB, rec TransactionRecord) (*models.Transaction, error) {
	vault, err := s.findVault(tx, models.CanonicalName(rec.Username), models.CanonicalName(rec.Vault))
	if err != nil {
		return nil, err
	}

	var categoryID *uint
	if rec.Category != "" {
		category, err := s.findCategory(tx, rec.Category)
		if err != nil {
			return nil, err
		}
		categoryID = &category.ID
	}

	var unitID *uint
	if rec.Unit != "" {
		unit, err := s.findUnit(tx, rec.Unit)
		if err != nil {
			return nil, err
		}
		unitID = &unit.ID
	}

	date := rec.Date
	if date.IsZero() {
		date = time.Now()
	}

	transaction := &models.Transaction{
		VaultID:     vault.ID,
		Type:        rec.Type,
		Amount:      rec.Amount,
		CategoryID:  categoryID,
		Description: lowerDescription(rec.Description),
		Quantity:    rec.Quantity,
		UnitID:      unitID,
		Date:        date,
	}
	if err := tx.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// RecordLoan upserts into the loan aggregate: if a row for the ordered
// (lender vault, borrower vault) pair exists the amount is added to it,
// otherwise a new row is inserted. Opposing directions never net.
func (s *Store) RecordLoan(tx *gorm.DB, lenderUser, lenderVault, borrowerUser, borrowerVault string, amount decimal.Decimal) error {
	lender, err := s.findVault(tx, models.CanonicalName(lenderUser), models.CanonicalName(lenderVault))
	if err != nil {
		return err
	}
	borrower, err := s.findVault(tx, models.CanonicalName(borrowerUser), models.CanonicalName(borrowerVault))
	if err != nil {
		return err
	}

	var loan models.Loan
	err = tx.Where("lender_vault_id = ? AND borrower_vault_id = ?", lender.ID, borrower.ID).First(&loan).Error
	switch {
	case err == nil:
		newAmount := loan.Amount.Add(amount)
		if err := tx.Model(&models.Loan{}).
			Where("lender_vault_id = ? AND borrower_vault_id = ?", lender.ID, borrower.ID).
			Update("amount", newAmount).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		loan = models.Loan{
			LenderVaultID:   lender.ID,
			BorrowerVaultID: borrower.ID,
			Amount:          amount,
		}
		if err := tx.Create(&loan).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	default:
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// AggregateLoans returns every loan row where the user is lender or
// borrower, grouped by (lender, borrower) user pair with amounts summed.
// Summation happens in Go on decimals rather than in SQL.
func (s *Store) AggregateLoans(username string) ([]LoanSummary, error) {
	canonical := models.CanonicalName(username)

	type loanRow struct {
		Lender   string
		Borrower string
		Amount   decimal.Decimal
	}
	var rows []loanRow
	if err := s.db.Table("loans").
		Select("lu.username AS lender, bu.username AS borrower, loans.amount AS amount").
		Joins("JOIN vaults lv ON loans.lender_vault_id = lv.id").
		Joins("JOIN vaults bv ON loans.borrower_vault_id = bv.id").
		Joins("JOIN users lu ON lv.user_id = lu.id").
		Joins("JOIN users bu ON bv.user_id = bu.id").
		Where("lu.username = ? OR bu.username = ?", canonical, canonical).
		Order("lu.username, bu.username, loans.lender_vault_id, loans.borrower_vault_id").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var summaries []LoanSummary
	index := make(map[[2]string]int)
	for _, row := range rows {
		key := [2]string{row.Lender, row.Borrower}
		if i, ok := index[key]; ok {
			summaries[i].Amount = summaries[i].Amount.Add(row.Amount)
			continue
		}
		index[key] = len(summaries)
		summaries = append(summaries, LoanSummary{Lender: row.Lender, Borrower: row.Borrower, Amount: row.Amount})
	}
	return summaries, nil
}

// ListTransactions returns the full transaction history of a user across
// all vaults, oldest first, with vault, category, and unit preloaded.
func (s *Store) ListTransactions(username string) ([]models.Transaction, error) {
	user, err := s.findUser(s.db, models.CanonicalName(username))
	if err != nil {
		return nil, err
	}
	var transactions []models.Transaction
	if err := s.db.
		Joins("JOIN vaults ON vaults.id = transactions.vault_id").
		Where("vaults.user_id = ?", user.ID).
		Preload("Vault").Preload("Category").Preload("Unit").
		Order("transactions.date ASC, transactions.id ASC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// UserTransactions returns one page of a user's transaction history,
// newest first.
func (s *Store) UserTransactions(username string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	user, err := s.findUser(s.db, models.CanonicalName(username))
	if err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Transaction{}).
		Joins("JOIN vaults ON vaults.id = transactions.vault_id").
		Where("vaults.user_id = ?", user.ID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Preload("Vault").Preload("Category").Preload("Unit").
		Order("transactions.date DESC, transactions.id DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// CreateCategory adds a category with a unique name.
func (s *Store) CreateCategory(name string) (*models.Category, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	var count int64
	if err := s.db.Model(&models.Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateCategory
	}
	category := &models.Category{Name: name}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// ListCategories returns all category names.
func (s *Store) ListCategories() ([]string, error) {
	var names []string
	if err := s.db.Model(&models.Category{}).Order("id").Pluck("name", &names).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return names, nil
}

// CreateUnit adds a measurement unit with a unique name.
func (s *Store) CreateUnit(name string) (*models.Unit, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unit name is required")
	}
	var count int64
	if err := s.db.Model(&models.Unit{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateUnit
	}
	unit := &models.Unit{Name: name}
	if err := s.db.Create(unit).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return unit, nil
}

// ListUnits returns all unit names.
func (s *Store) ListUnits() ([]string, error) {
	var names []string
	if err := s.db.Model(&models.Unit{}).Order("id").Pluck("name", &names).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return names, nil
}

// EnsureDefaults seeds the default categories and units. Existing rows are
// left untouched, so running it on every startup is safe.
func (s *Store) EnsureDefaults() error {
	for _, name := range models.DefaultCategories {
		category := models.Category{Name: name}
		if err := s.db.Where("name = ?", name).FirstOrCreate(&category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	for _, name := range models.DefaultUnits {
		unit := models.Unit{Name: name}
		if err := s.db.Where("name = ?", name).FirstOrCreate(&unit).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}

// lowerDescription normalizes free-text descriptions before storage.
func lowerDescription(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (s *Store) findUser(tx *gorm.DB, canonicalName string) (*models.User, error) {
	var user models.User
	if err := tx.Where("username = ?", canonicalName).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

func (s *Store) findVault(tx *gorm.DB, canonicalUser, canonicalVault string) (*models.Vault, error) {
	user, err := s.findUser(tx, canonicalUser)
	if err != nil {
		return nil, err
	}
	var vault models.Vault
	if err := tx.Where("user_id = ? AND name = ?", user.ID, canonicalVault).First(&vault).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrVaultNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &vault, nil
}

func (s *Store) findCategory(tx *gorm.DB, name string) (*models.Category, error) {
	var category models.Category
	if err := tx.Where("name = ?", name).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

func (s *Store) findUnit(tx *gorm.DB, name string) (*models.Unit, error) {
	var unit models.Unit
	if err := tx.Where("name = ?", name).First(&unit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnitNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &unit, nil
}
