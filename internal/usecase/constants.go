package usecase

const (
	// DefaultDormancyDays is the trailing window used to flag accounts with no
	// activity when the caller does not pick one.
	DefaultDormancyDays = 30

	// DescriptionInitialDeposit is the ledger entry description for the
	// opening credit of a new account.
	DescriptionInitialDeposit = "Initial deposit"

	// DescriptionTopUp is the default ledger entry description for credits.
	DescriptionTopUp = "Top-up"

	// DescriptionWithdrawal is the default ledger entry description for debits.
	DescriptionWithdrawal = "Withdrawal"
)
