// Package bnb implements a parallel branch-and-bound engine for mixed-integer
// quadratic and linear programs (MIQP/MILP):
//
//	minimize    (1/2) x^T Q x + L^T x
//	subject to  cnsLoBs <= A x <= cnsUpBs
//	            varLoBs <= x   <= varUpBs
//	            x_i integer for i in D
//	            at most one j in Gk nonzero, for every SOS1 group Gk
//
// The engine itself — node bookkeeping, the priority queue, branching and
// pseudo-cost learning, the per-node branch-and-solve step, the worker run
// loop and the multi-worker coordinator — is the package's concern. The
// continuous relaxation is solved through the SubWorkspace interface, which
// is implemented here by a reference gonum-backed backend; swapping in a
// production subsolver (OSQP, QPALM, GUROBI) means implementing that one
// interface, nothing else in the package changes.
package bnb
