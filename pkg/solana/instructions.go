package solana

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	solana "github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/token"

	"github.com/propellerswap/propeller/pkg/memo"
)

const (
	instructionPropellerAdd      = "propeller_add"
	instructionPropellerTransfer = "propeller_transfer_native_with_payload"
)

// Discriminator returns the 8 byte selector the routing program expects in
// front of an instruction's arguments.
func Discriminator(name string) []byte {
	return bin.SighashTypeID(bin.SIGHASH_GLOBAL_NAMESPACE, name).Bytes()
}

// TransferArgs are the arguments of propeller_transfer_native_with_payload.
type TransferArgs struct {
	Amount        uint64
	TargetChain   uint16
	Owner         [32]byte
	GasKickstart  bool
	MaxFee        uint64
	TargetTokenID uint16
	Memo          memo.Memo
}

// AddArgs are the arguments of propeller_add.
type AddArgs struct {
	InputAmounts [2]uint64
	MaxFee       uint64
}

// EncodeTransferArgs borsh encodes the transfer instruction data. The owner
// is a length prefixed byte vector; the memo is a fixed 16 byte array.
func EncodeTransferArgs(args TransferArgs) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)

	steps := []func() error{
		func() error { return enc.WriteBytes(Discriminator(instructionPropellerTransfer), false) },
		func() error { return enc.WriteUint64(args.Amount, binary.LittleEndian) },
		func() error { return enc.WriteUint16(args.TargetChain, binary.LittleEndian) },
		func() error { return enc.WriteUint32(uint32(len(args.Owner)), binary.LittleEndian) },
		func() error { return enc.WriteBytes(args.Owner[:], false) },
		func() error { return enc.WriteBool(args.GasKickstart) },
		func() error { return enc.WriteUint64(args.MaxFee, binary.LittleEndian) },
		func() error { return enc.WriteUint16(args.TargetTokenID, binary.LittleEndian) },
		func() error { return enc.WriteBytes(args.Memo[:], false) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, fmt.Errorf("failed to encode transfer args: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// EncodeAddArgs borsh encodes the pool add instruction data.
func EncodeAddArgs(args AddArgs) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)

	if err := enc.WriteBytes(Discriminator(instructionPropellerAdd), false); err != nil {
		return nil, err
	}
	for _, amount := range args.InputAmounts {
		if err := enc.WriteUint64(amount, binary.LittleEndian); err != nil {
			return nil, fmt.Errorf("failed to encode add args: %w", err)
		}
	}
	if err := enc.WriteUint64(args.MaxFee, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("failed to encode add args: %w", err)
	}
	return buf.Bytes(), nil
}

// NewTransferInstruction builds the routing program's native transfer instruction.
func NewTransferInstruction(program solana.PublicKey, accounts *TransferAccounts, args TransferArgs) (solana.Instruction, error) {
	data, err := EncodeTransferArgs(args)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(program, accounts.metas(), data), nil
}

// NewAddInstruction builds the routing program's pool add instruction.
func NewAddInstruction(program solana.PublicKey, accounts *AddAccounts, args AddArgs) (solana.Instruction, error) {
	data, err := EncodeAddArgs(args)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(program, accounts.metas(), data), nil
}

// NewMemoInstruction carries the memo as hex text so explorers show it readably.
func NewMemoInstruction(m memo.Memo) solana.Instruction {
	return solana.NewInstruction(solana.MemoProgramID, solana.AccountMetaSlice{}, []byte(m.Hex()))
}

// NewComputeLimitInstruction raises the transaction's compute unit budget.
func NewComputeLimitInstruction(units uint32) solana.Instruction {
	return computebudget.NewSetComputeUnitLimitInstruction(units).Build()
}

// NewApproveInstruction delegates amount of source to delegate.
func NewApproveInstruction(source, delegate, owner solana.PublicKey, amount uint64) solana.Instruction {
	return token.NewApproveInstruction(amount, source, delegate, owner, nil).Build()
}

// NewRevokeInstruction clears any delegation on source.
func NewRevokeInstruction(source, owner solana.PublicKey) solana.Instruction {
	return token.NewRevokeInstruction(source, owner, nil).Build()
}
