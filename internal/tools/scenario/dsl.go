package scenario

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
	"github.com/louisbranch/tally/internal/core/calc"
	"github.com/louisbranch/tally/internal/keypad"
)

const scenarioTypeName = "scenario"

// Scenario is a named list of calculator steps built by a Lua script.
type Scenario struct {
	Name  string
	Steps []Step
}

// Step is one keypad action or expectation.
type Step struct {
	Kind string
	Args map[string]any
}

// LoadScenarioFromFile runs a Lua script and returns the Scenario it builds.
// The script must return the value created by Scenario.new.
func LoadScenarioFromFile(path string) (*Scenario, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerLuaTypes(state)

	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}

	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, fmt.Errorf("scenario script returned invalid Scenario")
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scenario, nil
}

func registerLuaTypes(state *lua.State) {
	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)

	state.NewTable()
	lua.SetFunctions(state, scenarioConstructor, 0)
	state.SetGlobal("Scenario")
}

var scenarioConstructor = []lua.RegistryFunction{
	{Name: "new", Function: scenarioNew},
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	state.PushUserData(&Scenario{Name: name})
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: "press", Function: scenarioPress},
	{Name: "digit", Function: scenarioDigit},
	{Name: "decimal", Function: simpleStep("decimal")},
	{Name: "negate", Function: simpleStep("negate")},
	{Name: "percent", Function: simpleStep("percent")},
	{Name: "backspace", Function: simpleStep("backspace")},
	{Name: "clear", Function: simpleStep("clear")},
	{Name: "operate", Function: scenarioOperate},
	{Name: "equals", Function: scenarioEquals},
	{Name: "restore", Function: scenarioRestore},
	{Name: "clear_history", Function: simpleStep("clear_history")},
	{Name: "expect_display", Function: scenarioExpectDisplay},
	{Name: "expect_raw", Function: scenarioExpectRaw},
	{Name: "expect_pending", Function: scenarioExpectPending},
	{Name: "expect_history", Function: scenarioExpectHistory},
	{Name: "expect_last", Function: scenarioExpectLast},
}

// scenarioPress records key names. Each argument may hold several
// whitespace-separated keys, e.g. scene:press("12.5 * 4", "Enter").
func scenarioPress(state *lua.State) int {
	scenario := checkScenario(state)
	var names []string
	for i := 2; i <= state.Top(); i++ {
		names = append(names, keypad.Split(lua.CheckString(state, i))...)
	}
	if len(names) == 0 {
		lua.Errorf(state, "press needs at least one key")
		return 0
	}
	if _, err := keypad.ParseAll(names); err != nil {
		lua.Errorf(state, "press: %s", err.Error())
		return 0
	}
	appendStep(scenario, "press", map[string]any{"keys": names})
	return 0
}

func scenarioDigit(state *lua.State) int {
	scenario := checkScenario(state)
	digit := lua.CheckString(state, 2)
	if len(digit) != 1 || digit[0] < '0' || digit[0] > '9' {
		lua.ArgumentError(state, 2, "digit must be 0-9")
		return 0
	}
	appendStep(scenario, "digit", map[string]any{"digit": digit})
	return 0
}

func scenarioOperate(state *lua.State) int {
	scenario := checkScenario(state)
	name := lua.CheckString(state, 2)
	op, err := calc.ParseOperator(name)
	if err != nil {
		lua.ArgumentError(state, 2, fmt.Sprintf("unknown operator %q", name))
		return 0
	}
	appendStep(scenario, "operate", map[string]any{"operator": op.String()})
	return 0
}

func scenarioEquals(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "operate", map[string]any{"operator": calc.OperatorNone.String()})
	return 0
}

// scenarioRestore takes a 1-based history position, newest first.
func scenarioRestore(state *lua.State) int {
	scenario := checkScenario(state)
	index := lua.CheckInteger(state, 2)
	if index < 1 {
		lua.ArgumentError(state, 2, "history index starts at 1")
		return 0
	}
	appendStep(scenario, "restore", map[string]any{"index": index})
	return 0
}

func scenarioExpectDisplay(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "expect_display", map[string]any{"text": lua.CheckString(state, 2)})
	return 0
}

func scenarioExpectRaw(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "expect_raw", map[string]any{"text": lua.CheckString(state, 2)})
	return 0
}

func scenarioExpectPending(state *lua.State) int {
	scenario := checkScenario(state)
	name := lua.CheckString(state, 2)
	op, err := calc.ParseOperator(name)
	if err != nil {
		lua.ArgumentError(state, 2, fmt.Sprintf("unknown operator %q", name))
		return 0
	}
	appendStep(scenario, "expect_pending", map[string]any{"operator": op.String()})
	return 0
}

func scenarioExpectHistory(state *lua.State) int {
	scenario := checkScenario(state)
	count := lua.CheckInteger(state, 2)
	if count < 0 {
		lua.ArgumentError(state, 2, "history count must not be negative")
		return 0
	}
	appendStep(scenario, "expect_history", map[string]any{"count": count})
	return 0
}

func scenarioExpectLast(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "expect_last", map[string]any{
		"expression": lua.CheckString(state, 2),
		"result":     lua.CheckString(state, 3),
	})
	return 0
}

func simpleStep(kind string) lua.Function {
	return func(state *lua.State) int {
		appendStep(checkScenario(state), kind, nil)
		return 0
	}
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if scenario, ok := ud.(*Scenario); ok && scenario != nil {
		return scenario
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func appendStep(scenario *Scenario, kind string, data map[string]any) {
	if scenario == nil {
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	scenario.Steps = append(scenario.Steps, Step{Kind: kind, Args: data})
}
