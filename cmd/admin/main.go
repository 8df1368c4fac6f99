package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/kevin07696/payment-orchestrator/internal/adapters/authorizenet"
	adapterports "github.com/kevin07696/payment-orchestrator/internal/adapters/ports"
	"github.com/kevin07696/payment-orchestrator/internal/adapters/postgres"
	"github.com/kevin07696/payment-orchestrator/internal/adapters/secrets"
	"github.com/kevin07696/payment-orchestrator/internal/config"
	"github.com/kevin07696/payment-orchestrator/internal/domain/models"
	"github.com/kevin07696/payment-orchestrator/internal/services/authorization"
	"github.com/kevin07696/payment-orchestrator/internal/services/payment"
	"github.com/kevin07696/payment-orchestrator/internal/services/refund"
	"github.com/kevin07696/payment-orchestrator/pkg/observability"
	"github.com/kevin07696/payment-orchestrator/pkg/resilience"
)

type AdminCLI struct {
	ctx      context.Context
	cfg      *config.Config
	db       *postgres.DBExecutor
	logger   *zap.Logger
	timeouts *resilience.TimeoutConfig
}

func main() {
	var (
		action = flag.String("action", "", "Action to perform: store-credential, show-credential, charge, refund")
		userID = flag.Int64("user", 0, "Salesperson/merchant user id")
	)
	flag.Parse()

	if *action == "" {
		fmt.Println("Usage: admin -action=<action> [options]")
		fmt.Println("Actions:")
		fmt.Println("  store-credential - Encode and store a merchant credential for a user")
		fmt.Println("  show-credential  - Decode the stored credential for a user (key is masked)")
		fmt.Println("  charge           - Charge an invoice with a card, end to end")
		fmt.Println("  refund           - Refund a settled transaction")
		os.Exit(1)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	logger := newLogger(cfg.Logger)
	defer logger.Sync()

	ctx := context.Background()
	db, err := postgres.NewDBExecutor(ctx, postgres.DefaultConfig(cfg.Database.ConnectionString()), logger)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer db.Close()

	cli := &AdminCLI{
		ctx:      ctx,
		cfg:      cfg,
		db:       db,
		logger:   logger,
		timeouts: resilience.DefaultTimeoutConfig(),
	}

	switch *action {
	case "store-credential":
		cli.storeCredential(*userID)
	case "show-credential":
		cli.showCredential(*userID)
	case "charge":
		cli.charge()
	case "refund":
		cli.refund()
	default:
		fmt.Printf("Unknown action: %s\n", *action)
		os.Exit(1)
	}
}

func (cli *AdminCLI) storeCredential(userID int64) {
	reader := bufio.NewReader(os.Stdin)

	if userID == 0 {
		fmt.Print("User ID: ")
		line, _ := reader.ReadString('\n')
		parsed, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
		if err != nil {
			log.Fatal("Invalid user id: ", err)
		}
		userID = parsed
	}

	fmt.Print("API login ID: ")
	loginID, _ := reader.ReadString('\n')
	loginID = strings.TrimSpace(loginID)

	fmt.Print("Transaction key: ")
	keyBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		log.Fatal("Failed to read transaction key: ", err)
	}
	fmt.Println()

	fmt.Print("Client key (optional): ")
	clientBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		log.Fatal("Failed to read client key: ", err)
	}
	fmt.Println()

	if loginID == "" || len(keyBytes) == 0 {
		log.Fatal("Login ID and transaction key are required")
	}

	stored := authorization.Codec{}.Encode(userID, models.MerchantCredential{
		LoginID:        loginID,
		TransactionKey: string(keyBytes),
		ClientKey:      string(clientBytes),
	})

	if cli.cfg.Secrets.Backend == "db" {
		cli.storeCredentialRow(stored)
	} else {
		cli.storeCredentialSecret(stored)
	}

	fmt.Println("\n✅ Credential stored")
	fmt.Printf("User ID: %d\n", userID)
	fmt.Printf("Backend: %s\n", cli.cfg.Secrets.Backend)
	fmt.Printf("Format: %s\n", stored.FormatVersion)
}

const upsertCredentialQuery = `
INSERT INTO merchant_credentials (user_id, login_id, transaction_key, client_key, format_version)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id) DO UPDATE
SET login_id = EXCLUDED.login_id,
    transaction_key = EXCLUDED.transaction_key,
    client_key = EXCLUDED.client_key,
    format_version = EXCLUDED.format_version,
    updated_at = now()`

func (cli *AdminCLI) storeCredentialRow(stored models.StoredCredential) {
	_, err := cli.db.GetDB().Exec(cli.ctx, upsertCredentialQuery,
		stored.UserID, stored.LoginID, stored.TransactionKey, stored.ClientKey, stored.FormatVersion)
	if err != nil {
		log.Fatal("Failed to store credential: ", err)
	}
}

func (cli *AdminCLI) storeCredentialSecret(stored models.StoredCredential) {
	blob, err := authorization.EncodeSecretBlob(stored)
	if err != nil {
		log.Fatal("Failed to encode credential blob: ", err)
	}

	store := cli.secretStore()
	version, err := store.PutSecret(cli.ctx, secretPath(stored.UserID), blob)
	if err != nil {
		log.Fatal("Failed to write secret: ", err)
	}
	fmt.Printf("Secret version: %s\n", version)
}

func (cli *AdminCLI) showCredential(userID int64) {
	if userID == 0 {
		log.Fatal("-user is required for show-credential")
	}

	credentials := postgres.NewCredentialStore()
	directory := postgres.NewDirectoryStore()
	resolver := authorization.NewMerchantResolver(directory, credentials, cli.logger)
	if cli.cfg.Secrets.Backend != "db" {
		resolver = resolver.WithSecretStore(cli.secretStore(), secretPath)
	}

	cred, err := resolver.Resolve(cli.ctx, cli.db.GetDB(), userID)
	if err != nil {
		log.Fatal("Failed to resolve credential: ", err)
	}

	fmt.Printf("User ID: %d\n", userID)
	fmt.Printf("Login ID: %s\n", cred.LoginID)
	fmt.Printf("Transaction key: %s\n", maskTail(cred.TransactionKey))
	fmt.Printf("Client key: %s\n", maskTail(cred.ClientKey))
}

func (cli *AdminCLI) charge() {
	reader := bufio.NewReader(os.Stdin)

	invoiceID := readInt64(reader, "Invoice ID: ")

	fmt.Print("Card number: ")
	numberBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		log.Fatal("Failed to read card number: ", err)
	}
	fmt.Println()

	card := payment.CardPayment{CardNumber: string(numberBytes)}

	fmt.Print("Expiration year (YYYY): ")
	card.ExpirationYear = readLine(reader)
	fmt.Print("Expiration month (MM): ")
	card.ExpirationMonth = readLine(reader)
	fmt.Print("CVV (optional): ")
	card.CVV = readLine(reader)

	reconciler := payment.NewTransactionReconciler(
		cli.db,
		postgres.NewInvoiceStore(),
		postgres.NewDirectoryStore(),
		postgres.NewAppointmentStore(),
		postgres.NewTransactionRepository(),
		postgres.NewProfileRepository(),
		cli.gateway(),
		cli.resolver(),
		observability.NewMetricsObserver(cli.logger),
		cli.logger,
	)

	ctx, cancel := cli.timeouts.CommandContext(cli.ctx)
	defer cancel()

	receipt, err := reconciler.ChargeCard(ctx, invoiceID, card)
	if err != nil {
		log.Fatal("Charge failed: ", err)
	}

	fmt.Println("\n✅ CHARGE APPROVED")
	fmt.Printf("Transaction ID: %s\n", receipt.TransactionID)
	fmt.Printf("Gateway txn: %s\n", receipt.GatewayTxnID)
	fmt.Printf("Card: %s\n", receipt.CardNumberMasked)
	fmt.Printf("Amount: %s\n", receipt.Amount.StringFixed(2))
}

func (cli *AdminCLI) refund() {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Transaction ID: ")
	transactionID := readLine(reader)

	fmt.Print("Amount: ")
	amount, err := decimal.NewFromString(readLine(reader))
	if err != nil {
		log.Fatal("Invalid amount: ", err)
	}

	processor := refund.NewProcessor(
		cli.db,
		postgres.NewTransactionRepository(),
		cli.gateway(),
		cli.resolver(),
		observability.NewMetricsObserver(cli.logger),
		cli.logger,
	)

	ctx, cancel := cli.timeouts.CommandContext(cli.ctx)
	defer cancel()

	receipt, err := processor.Refund(ctx, transactionID, amount)
	if err != nil {
		log.Fatal("Refund failed: ", err)
	}

	fmt.Println("\n✅ REFUND ACCEPTED")
	fmt.Printf("Transaction ID: %s\n", receipt.TransactionID)
	fmt.Printf("Gateway txn: %s\n", receipt.GatewayTxnID)
	fmt.Printf("Card: %s\n", receipt.CardNumberMasked)
	fmt.Printf("Amount: %s\n", receipt.Amount.StringFixed(2))
}

func (cli *AdminCLI) gateway() *authorizenet.Client {
	return authorizenet.NewClient(authorizenet.DefaultConfig(authorizenet.Mode(cli.cfg.Gateway.Mode)), nil, cli.logger)
}

func (cli *AdminCLI) resolver() *authorization.MerchantResolver {
	resolver := authorization.NewMerchantResolver(postgres.NewDirectoryStore(), postgres.NewCredentialStore(), cli.logger)
	if cli.cfg.Secrets.Backend != "db" {
		resolver = resolver.WithSecretStore(cli.secretStore(), secretPath)
	}
	return resolver
}

func (cli *AdminCLI) secretStore() adapterports.SecretStore {
	switch cli.cfg.Secrets.Backend {
	case "vault":
		store, err := secrets.NewVaultStore(&secrets.VaultConfig{
			Address:   cli.cfg.Secrets.VaultAddress,
			Token:     cli.cfg.Secrets.VaultToken,
			MountPath: cli.cfg.Secrets.VaultMountPath,
		}, cli.logger)
		if err != nil {
			log.Fatal("Failed to create Vault client: ", err)
		}
		return store
	case "aws":
		store, err := secrets.NewAWSSecretsManagerStore(cli.ctx, &secrets.AWSSecretsManagerConfig{
			Region:  cli.cfg.Secrets.AWSRegion,
			Profile: cli.cfg.Secrets.AWSProfile,
		}, cli.logger)
		if err != nil {
			log.Fatal("Failed to create Secrets Manager client: ", err)
		}
		return store
	case "local":
		return secrets.NewLocalSecretStore(cli.cfg.Secrets.LocalDir, cli.logger)
	default:
		log.Fatalf("Secret backend %q has no secret store", cli.cfg.Secrets.Backend)
		return nil
	}
}

func secretPath(userID int64) string {
	return fmt.Sprintf("payments/merchants/%d", userID)
}

func newLogger(cfg config.LoggerConfig) *zap.Logger {
	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if level, err := zap.ParseAtomicLevel(cfg.Level); err == nil {
		zapCfg.Level = level
	}

	logger, err := zapCfg.Build()
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	return logger
}

func readLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func readInt64(reader *bufio.Reader, prompt string) int64 {
	fmt.Print(prompt)
	value, err := strconv.ParseInt(readLine(reader), 10, 64)
	if err != nil {
		log.Fatal("Invalid number: ", err)
	}
	return value
}

func maskTail(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}
