package circuit

import (
	"math"
	"testing"

	"qsimdeck/sim"
)

func qubitProbs(t *testing.T, sess *sim.Session) []sim.QubitProbability {
	t.Helper()
	probs, err := sess.QubitProbabilities()
	if err != nil {
		t.Fatalf("QubitProbabilities error: %v", err)
	}
	return probs
}

func basisProbs(t *testing.T, sess *sim.Session) []float64 {
	t.Helper()
	probs, err := sess.Probabilities()
	if err != nil {
		t.Fatalf("Probabilities error: %v", err)
	}
	return probs
}

func TestRunBellCorrelation(t *testing.T) {
	qasm := `qreg q[2];
creg c[2];
h q[0];
cx q[0], q[1];
measure q[0] -> c[0];
measure q[1] -> c[1];`

	c := Circuit{}
	if err := c.ParseQASM(qasm); err != nil {
		t.Fatalf("ParseQASM error: %v", err)
	}

	sawZero, sawOne := false, false
	for seed := int64(0); seed < 40; seed++ {
		_, res, err := Simulate(&c, -1, sim.WithSeed(seed))
		if err != nil {
			t.Fatalf("seed %d: Simulate error: %v", seed, err)
		}
		if res.Cbits[0] != res.Cbits[1] {
			t.Fatalf("seed %d: Bell measurement uncorrelated: c=%v", seed, res.Cbits)
		}
		if res.Cbits[0] == 0 {
			sawZero = true
		} else {
			sawOne = true
		}
	}
	if !sawZero || !sawOne {
		t.Errorf("40 seeds should show both outcomes, got sawZero=%v sawOne=%v", sawZero, sawOne)
	}
}

func TestRunClassicalControl(t *testing.T) {
	// q[0] is deterministically |1>, so the conditioned X must fire.
	c := Circuit{NumQubits: 2}
	c.AddGate("X", 0, 0)
	c.AddMeasure(0, 1)
	c.AddClassicalControlGate("X", 1, 2, 0)

	sess, res, err := Simulate(&c, -1, sim.WithSeed(7))
	if err != nil {
		t.Fatalf("Simulate error: %v", err)
	}
	if res.Cbits[0] != 1 {
		t.Fatalf("measuring X|0> must report 1, got %d", res.Cbits[0])
	}

	probs := qubitProbs(t, sess)
	if math.Abs(probs[1].Prob1-1) > 1e-10 {
		t.Errorf("conditioned X should flip q[1]: P(1)=%g", probs[1].Prob1)
	}
}

func TestRunClassicalControlNotTaken(t *testing.T) {
	// q[0] stays |0>, so the conditioned X must not fire.
	c := Circuit{NumQubits: 2}
	c.AddMeasure(0, 0)
	c.AddClassicalControlGate("X", 1, 1, 0)

	sess, res, err := Simulate(&c, -1, sim.WithSeed(7))
	if err != nil {
		t.Fatalf("Simulate error: %v", err)
	}
	if res.Cbits[0] != 0 {
		t.Fatalf("measuring |0> must report 0, got %d", res.Cbits[0])
	}

	probs := qubitProbs(t, sess)
	if math.Abs(probs[1].Prob0-1) > 1e-10 {
		t.Errorf("q[1] should remain |0>: P(0)=%g", probs[1].Prob0)
	}
}

func TestRunUpToStep(t *testing.T) {
	c := Circuit{NumQubits: 1}
	c.AddGate("X", 0, 0)
	c.AddGate("X", 0, 1)

	sess, _, err := Simulate(&c, 0, sim.WithSeed(1))
	if err != nil {
		t.Fatalf("Simulate error: %v", err)
	}
	if p := qubitProbs(t, sess)[0].Prob1; math.Abs(p-1) > 1e-10 {
		t.Errorf("after step 0 the qubit is |1>: P(1)=%g", p)
	}

	sess, _, err = Simulate(&c, -1, sim.WithSeed(1))
	if err != nil {
		t.Fatalf("Simulate error: %v", err)
	}
	if p := qubitProbs(t, sess)[0].Prob0; math.Abs(p-1) > 1e-10 {
		t.Errorf("the full run cancels both X gates: P(0)=%g", p)
	}
}

func TestRunReset(t *testing.T) {
	c := Circuit{NumQubits: 1}
	c.AddGate("X", 0, 0)
	c.AddReset(0, 1)

	sess, _, err := Simulate(&c, -1, sim.WithSeed(3))
	if err != nil {
		t.Fatalf("Simulate error: %v", err)
	}
	if p := qubitProbs(t, sess)[0].Prob0; math.Abs(p-1) > 1e-10 {
		t.Errorf("reset must project onto |0>: P(0)=%g", p)
	}
}

func TestRunSkipsBarriersAndNoiseMarkers(t *testing.T) {
	c := Circuit{NumQubits: 1}
	c.AddGate("X", 0, 0)
	c.AddBarrier(1)
	c.AddNoise(0, 2, "depolarizing", 0.1)

	sess, _, err := Simulate(&c, -1, sim.WithSeed(5))
	if err != nil {
		t.Fatalf("Simulate error: %v", err)
	}
	if p := qubitProbs(t, sess)[0].Prob1; math.Abs(p-1) > 1e-10 {
		t.Errorf("barrier and noise annotation must not change the state: P(1)=%g", p)
	}
}

func TestRunGHZFromQASM(t *testing.T) {
	qasm := `qreg q[3];
h q[0];
cx q[0], q[1];
cx q[1], q[2];`

	c := Circuit{}
	if err := c.ParseQASM(qasm); err != nil {
		t.Fatalf("ParseQASM error: %v", err)
	}

	sess, _, err := Simulate(&c, -1, sim.WithSeed(11))
	if err != nil {
		t.Fatalf("Simulate error: %v", err)
	}

	probs := basisProbs(t, sess)
	if math.Abs(probs[0]-0.5) > 1e-10 || math.Abs(probs[7]-0.5) > 1e-10 {
		t.Errorf("GHZ peaks wrong: P(000)=%g P(111)=%g", probs[0], probs[7])
	}
	for i := 1; i < 7; i++ {
		if probs[i] > 1e-10 {
			t.Errorf("GHZ has no weight on %03b, got %g", i, probs[i])
		}
	}
}

func TestRunThreeQubitGates(t *testing.T) {
	c := Circuit{NumQubits: 3}
	c.AddGate("X", 0, 0)
	c.AddGate("X", 1, 0)
	c.AddMultiControlGate("CCX", 2, 1, []int{0, 1})

	sess, _, err := Simulate(&c, -1, sim.WithSeed(13))
	if err != nil {
		t.Fatalf("Simulate error: %v", err)
	}
	if p := qubitProbs(t, sess)[2].Prob1; math.Abs(p-1) > 1e-10 {
		t.Errorf("Toffoli with both controls set must flip q[2]: P(1)=%g", p)
	}

	// Fredkin: control q[0] set, swap |1>|0> on q[1],q[2].
	qasm := `qreg q[3];
x q[0];
x q[1];
cswap q[0], q[1], q[2];`
	c2 := Circuit{}
	if err := c2.ParseQASM(qasm); err != nil {
		t.Fatalf("ParseQASM error: %v", err)
	}
	sess, _, err = Simulate(&c2, -1, sim.WithSeed(13))
	if err != nil {
		t.Fatalf("Simulate error: %v", err)
	}
	probs := qubitProbs(t, sess)
	if math.Abs(probs[1].Prob0-1) > 1e-10 || math.Abs(probs[2].Prob1-1) > 1e-10 {
		t.Errorf("Fredkin should move the excitation from q[1] to q[2]: P1(q1)=%g P1(q2)=%g",
			probs[1].Prob1, probs[2].Prob1)
	}
}
