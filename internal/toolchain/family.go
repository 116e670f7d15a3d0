package toolchain

import (
	"path/filepath"
	"runtime"
	"strings"
)

// Family identifies the compiler family declared by a cross file.
type Family string

const (
	FamilyGCC      Family = "gcc"
	FamilyArmClang Family = "armclang"
)

// armclangSuffix marks cross files that declare the Arm Compiler toolchain.
const armclangSuffix = "armclang.ini"

var familyCommands = map[Family]string{
	FamilyGCC:      "arm-none-eabi-gcc",
	FamilyArmClang: "armclang",
}

// FamilyForFile picks the compiler family from a cross file name. Only the
// name is inspected.
func FamilyForFile(name string) Family {
	base := filepath.Base(filepath.FromSlash(name))
	if strings.HasSuffix(base, armclangSuffix) {
		return FamilyArmClang
	}
	return FamilyGCC
}

// Families returns the known compiler families in a stable order.
func Families() []Family {
	return []Family{FamilyGCC, FamilyArmClang}
}

// Command returns the compiler command name without platform suffix.
func (f Family) Command() string {
	if cmd, ok := familyCommands[f]; ok {
		return cmd
	}
	return familyCommands[FamilyGCC]
}

// Executable returns the compiler file name for the current platform.
func (f Family) Executable() string {
	return executableName(f.Command())
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}
