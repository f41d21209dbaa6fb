package importer

// SampleDocument is one of the built-in bank policy files.
type SampleDocument struct {
	Name    string
	Content string
}

// SampleDocuments is the fixed corpus written into an empty sample
// directory.
var SampleDocuments = []SampleDocument{
	{
		Name: "Bank Loan Approval Policy.txt",
		Content: `Bank Loan Approval Policy

1. Customers must have a minimum credit score of 700 to qualify for a loan.
2. Loan applications must be reviewed within 5 business days.
3. Interest rates depend on customer risk assessment.
4. Large loans ($50,000+) require approval from the Senior Loan Officer.
5. If a customer has a debt-to-income ratio higher than 40%, additional checks are required.`,
	},
	{
		Name: "Bank Customer Data Protection Policy.txt",
		Content: `Bank Customer Data Protection Policy

1. Customer data must be encrypted before storage.
2. Employees are prohibited from sharing customer information without authorization.
3. Data access is restricted based on user roles.
4. Customer requests for data deletion must be processed within 30 days.
5. Security audits are conducted quarterly.`,
	},
	{
		Name: "Bank Fraud Prevention Policy.txt",
		Content: `Bank Fraud Prevention Policy

1. Transactions above $10,000 require additional verification.
2. Customers with multiple failed login attempts must reset their password.
3. If a transaction appears suspicious, the fraud detection team is alerted.
4. All ATM withdrawals above $1,000 require two-factor authentication.
5. Fraud reports must be resolved within 72 hours.`,
	},
}
